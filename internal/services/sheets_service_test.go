package services

import (
	"context"
	"errors"
	"testing"

	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	rows [][]interface{}
	err  error
}

func (f *fakeSource) FetchRows(context.Context) ([][]interface{}, error) {
	return f.rows, f.err
}

type fakeUpserter struct {
	saved    []*models.Meeting
	appOwned map[string]bool
	err      error
}

func (f *fakeUpserter) UpsertByZoneDate(_ context.Context, m *models.Meeting) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.appOwned[m.ZoneName+"/"+m.Date] {
		return false, repository.ErrDuplicate
	}
	f.saved = append(f.saved, m)
	return true, nil
}

func row(cells ...interface{}) []interface{} { return cells }

func TestParseSheetRows(t *testing.T) {
	rows := [][]interface{}{
		row("2024-01-10", "Z1", " Asha  Rao ", "Leader", "Present"),
		row("2024-01-10", "Z1", "Ravi", "Member", "leave", "<i>travelling</i>"),
		row("2024-01-03", "Z2", "Meera", "", "A"),
		row(),
		row("", "", "", ""),
		row("10/01/2024", "Z1", "Bad Date", "", "present"),
		row("2024-01-10", "Z1", "", "", "present"),
		row("2024-01-10", "Z1", "Unknown", "", "sick"),
		row("2024-01-10", "Z1", "Kiran", "", "absent", "should be dropped"),
	}

	meetings, skipped := ParseSheetRows(rows)

	require.Len(t, meetings, 2)
	assert.Equal(t, "2024-01-03", meetings[0].Date)
	assert.Equal(t, "Z2", meetings[0].ZoneName)

	z1 := meetings[1]
	assert.Equal(t, models.SourceSheets, z1.Source)
	require.Len(t, z1.Attendance, 3)
	assert.Equal(t, models.AttendanceRecord{PersonName: "Asha Rao", Role: "Leader", Status: models.StatusPresent}, z1.Attendance[0])
	assert.Equal(t, "travelling", z1.Attendance[1].Reason)
	assert.Empty(t, z1.Attendance[2].Reason)

	require.Len(t, skipped, 3)
	assert.Equal(t, 6, skipped[0].Row)
	assert.Equal(t, 7, skipped[1].Row)
	assert.Equal(t, 8, skipped[2].Row)
}

func TestSheetsSync(t *testing.T) {
	src := &fakeSource{rows: [][]interface{}{
		row("2024-01-10", "Z1", "Asha", "", "present"),
		row("2024-01-11", "Z2", "Ravi", "", "present"),
		row("2024-01-17", "Z1", "Asha", "", "leave"),
		row("bad", "Z1", "Asha", "", "leave"),
	}}
	store := &fakeUpserter{appOwned: map[string]bool{"Z2/2024-01-11": true}}
	svc := NewSheetsSyncService(src, store, zerolog.Nop())

	res, err := svc.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &models.SyncResult{RowsRead: 4, RowsSkipped: 1, MeetingsUpdated: 2, MeetingsKept: 1}, res)
	assert.Len(t, store.saved, 2)
}

func TestSheetsSyncErrors(t *testing.T) {
	svc := NewSheetsSyncService(&fakeSource{err: ErrSheetsDisabled}, &fakeUpserter{}, zerolog.Nop())
	_, err := svc.Sync(context.Background())
	assert.ErrorIs(t, err, ErrSheetsDisabled)

	boom := errors.New("boom")
	src := &fakeSource{rows: [][]interface{}{row("2024-01-10", "Z1", "Asha", "", "present")}}
	svc = NewSheetsSyncService(src, &fakeUpserter{err: boom}, zerolog.Nop())
	res, err := svc.Sync(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, res.MeetingsUpdated)
}
