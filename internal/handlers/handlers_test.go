package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"regexp"
	"testing"

	"meetingtracker-be/internal/access"
	"meetingtracker-be/internal/attendance"
	"meetingtracker-be/internal/middleware"
	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeMeetings is an in-memory MeetingStore that applies filters the way the
// Mongo query does.
type fakeMeetings struct {
	meetings   []models.Meeting
	people     []models.PersonSuggestion
	lastFilter repository.MeetingFilter
	created    *models.Meeting
}

func (f *fakeMeetings) Create(_ context.Context, m *models.Meeting) error {
	for _, existing := range f.meetings {
		if existing.ZoneName == m.ZoneName && existing.Date == m.Date {
			return repository.ErrDuplicate
		}
	}
	m.ID = primitive.NewObjectID()
	f.created = m
	f.meetings = append(f.meetings, *m)
	return nil
}

func (f *fakeMeetings) Get(_ context.Context, id string) (*models.Meeting, error) {
	for i := range f.meetings {
		if f.meetings[i].ID.Hex() == id {
			m := f.meetings[i]
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMeetings) Find(_ context.Context, filter repository.MeetingFilter) ([]models.Meeting, error) {
	f.lastFilter = filter
	out := []models.Meeting{}
	for _, m := range f.meetings {
		inRange := (filter.Start == "" || m.Date >= filter.Start) &&
			(filter.End == "" || m.Date < dayAfter(filter.End))
		if !inRange && !(filter.KeepMalformedDates && !calendarDate.MatchString(m.Date)) {
			continue
		}
		if filter.Zones != nil && !contains(filter.Zones, m.ZoneName) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMeetings) Update(_ context.Context, m *models.Meeting) error {
	for i := range f.meetings {
		if f.meetings[i].ID == m.ID {
			f.meetings[i] = *m
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeMeetings) Delete(_ context.Context, id string) error {
	for i := range f.meetings {
		if f.meetings[i].ID.Hex() == id {
			f.meetings = append(f.meetings[:i], f.meetings[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeMeetings) People(_ context.Context, filter repository.MeetingFilter) ([]models.PersonSuggestion, error) {
	f.lastFilter = filter
	return f.people, nil
}

type fakeZones struct {
	zones []*models.Zone
}

func (f *fakeZones) ListZones(_ context.Context, names []string) ([]*models.Zone, error) {
	out := []*models.Zone{}
	for _, z := range f.zones {
		if names == nil || contains(names, z.Name) {
			out = append(out, z)
		}
	}
	return out, nil
}

var calendarDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

func dayAfter(date string) string {
	d, err := attendance.ParseDate(date)
	if err != nil {
		return date
	}
	return attendance.FormatDate(d.AddDate(0, 0, 1))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func admin() *access.Principal {
	return access.NewPrincipal("admin1", "admin@example.com", "admin", nil)
}

func zoneLeader(zones ...string) *access.Principal {
	return access.NewPrincipal("u1", "u1@example.com", "zone_leader", zones)
}

// newRouter returns a test engine that authenticates every request as p.
func newRouter(p *access.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if p != nil {
			c.Set(middleware.ContextUserID, p.UserID)
			c.Set(middleware.ContextPrincipal, p)
		}
		c.Next()
	})
	return r
}

func perform(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func mtg(zone, date string, records ...models.AttendanceRecord) models.Meeting {
	return models.Meeting{ID: primitive.NewObjectID(), ZoneName: zone, Date: date, Attendance: records, Source: models.SourceApp}
}

func att(name, status string) models.AttendanceRecord {
	return models.AttendanceRecord{PersonName: name, Status: status}
}
