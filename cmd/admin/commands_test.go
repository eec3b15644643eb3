package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"meetingtracker-be/internal/attendance"
	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/repository"
	"meetingtracker-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memUsers struct {
	byEmail map[string]*models.User
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return repository.ErrDuplicate
	}
	u.ID = primitive.NewObjectID()
	u.PersonID = utils.NewPersonID()
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) UpdatePassword(_ context.Context, userID, hash string) error {
	for _, u := range m.byEmail {
		if u.ID.Hex() == userID {
			u.Password = hash
			return nil
		}
	}
	return repository.ErrNotFound
}

type memMeetings struct {
	meetings []models.Meeting
	filter   repository.MeetingFilter
}

func (m *memMeetings) Find(_ context.Context, f repository.MeetingFilter) ([]models.Meeting, error) {
	m.filter = f
	return m.meetings, nil
}

type stubSyncer struct{}

func (stubSyncer) Sync(context.Context) (*models.SyncResult, error) {
	return &models.SyncResult{RowsRead: 3, MeetingsUpdated: 1}, nil
}

func run(t *testing.T, deps *adminDeps, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	deps.out = &out
	open := func(context.Context) (*adminDeps, func(), error) { return deps, func() {}, nil }

	cmd := newRootCommand(open)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func password(pwd string) func(int) ([]byte, error) {
	return func(int) ([]byte, error) { return []byte(pwd), nil }
}

func TestCreateUserCommand(t *testing.T) {
	users := &memUsers{byEmail: map[string]*models.User{}}
	deps := &adminDeps{users: users, readPassword: password("secret123")}

	out, err := run(t, deps, "create-user", "--email", "Admin@Example.com", "--name", "Admin", "--role", "admin", "--zones", "Z1,Z2")
	require.NoError(t, err)
	assert.Contains(t, out, "created admin@example.com (admin)")

	u := users.byEmail["admin@example.com"]
	require.NotNil(t, u)
	assert.Equal(t, []string{"Z1", "Z2"}, u.Zones)
	assert.NoError(t, utils.CheckPassword(u.Password, "secret123"))

	_, err = run(t, deps, "create-user", "--email", "admin@example.com", "--name", "Admin")
	assert.ErrorContains(t, err, "already exists")
}

func TestCreateUserRejectsBadInput(t *testing.T) {
	deps := &adminDeps{users: &memUsers{byEmail: map[string]*models.User{}}, readPassword: password("123")}

	_, err := run(t, deps, "create-user", "--email", "a@example.com", "--name", "A", "--role", "owner")
	assert.ErrorContains(t, err, "unknown role")

	_, err = run(t, deps, "create-user", "--email", "a@example.com", "--name", "A")
	assert.ErrorContains(t, err, "at least 6")

	deps.readPassword = func(int) ([]byte, error) { return nil, errors.New("not a terminal") }
	_, err = run(t, deps, "create-user", "--email", "a@example.com", "--name", "A")
	assert.ErrorContains(t, err, "read password")
}

func TestResetPasswordCommand(t *testing.T) {
	u := &models.User{ID: primitive.NewObjectID(), Email: "a@example.com"}
	deps := &adminDeps{
		users:        &memUsers{byEmail: map[string]*models.User{u.Email: u}},
		readPassword: password("new-secret"),
	}

	_, err := run(t, deps, "reset-password", "--email", "a@example.com")
	require.NoError(t, err)
	assert.NoError(t, utils.CheckPassword(u.Password, "new-secret"))

	_, err = run(t, deps, "reset-password", "--email", "nobody@example.com")
	assert.ErrorContains(t, err, "no user")
}

func TestSyncSheetsCommand(t *testing.T) {
	out, err := run(t, &adminDeps{syncer: stubSyncer{}}, "sync-sheets")
	require.NoError(t, err)
	assert.Contains(t, out, "rows read: 3")

	_, err = run(t, &adminDeps{}, "sync-sheets")
	assert.Error(t, err)
}

func TestReportCommand(t *testing.T) {
	meetings := &memMeetings{meetings: []models.Meeting{
		{ZoneName: "Z1", Date: "2024-01-10", Attendance: []models.AttendanceRecord{{PersonName: "Asha", Status: "present"}}},
		{ZoneName: "Z1", Date: "2024-01-17", Attendance: []models.AttendanceRecord{{PersonName: "Asha", Status: "leave"}}},
	}}
	out, err := run(t, &adminDeps{meetings: meetings}, "report", "--start", "2024-01-01", "--zone", "Z1")
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", meetings.filter.Start)
	assert.Equal(t, []string{"Z1"}, meetings.filter.Zones)
	assert.True(t, meetings.filter.KeepMalformedDates)

	var rep attendance.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 2, rep.TotalMeetings)
	require.Len(t, rep.PersonStats, 1)
	assert.Equal(t, 50.0, rep.PersonStats[0].Percentage)

	_, err = run(t, &adminDeps{meetings: meetings}, "report", "--end", "yesterday")
	assert.Error(t, err)
}
