package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"meetingtracker-be/config"
	"meetingtracker-be/internal/attendance"
	"meetingtracker-be/internal/metrics"
	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/repository"
	"meetingtracker-be/internal/utils"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Column order of the legacy attendance sheet.
const (
	colDate = iota
	colZone
	colName
	colRole
	colStatus
	colReason
)

// ErrSheetsDisabled is returned when no spreadsheet is configured.
var ErrSheetsDisabled = errors.New("google sheets import is not configured")

// RowSource yields raw spreadsheet rows.
type RowSource interface {
	FetchRows(ctx context.Context) ([][]interface{}, error)
}

// MeetingUpserter stores imported meetings keyed by zone and date.
type MeetingUpserter interface {
	UpsertByZoneDate(ctx context.Context, m *models.Meeting) (bool, error)
}

// GoogleSheetsSource reads the legacy sheet with a service account.
type GoogleSheetsSource struct {
	cfg *config.Config
}

func NewGoogleSheetsSource(cfg *config.Config) *GoogleSheetsSource {
	return &GoogleSheetsSource{cfg: cfg}
}

func (s *GoogleSheetsSource) client(ctx context.Context) (*sheets.Service, error) {
	data, err := os.ReadFile(s.cfg.SheetsCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read sheets credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}
	return sheets.NewService(ctx, option.WithTokenSource(creds.TokenSource))
}

func (s *GoogleSheetsSource) FetchRows(ctx context.Context) ([][]interface{}, error) {
	if !s.cfg.SheetsEnabled() {
		return nil, ErrSheetsDisabled
	}
	srv, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := srv.Spreadsheets.Values.Get(s.cfg.SheetsSpreadsheetID, s.cfg.SheetsRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet range %s: %w", s.cfg.SheetsRange, err)
	}
	return resp.Values, nil
}

// SheetsSyncService imports the legacy sheet into the meetings collection.
type SheetsSyncService struct {
	source   RowSource
	meetings MeetingUpserter
	logger   zerolog.Logger
}

func NewSheetsSyncService(source RowSource, meetings MeetingUpserter, logger zerolog.Logger) *SheetsSyncService {
	return &SheetsSyncService{
		source:   source,
		meetings: meetings,
		logger:   logger.With().Str("component", "sheets_sync").Logger(),
	}
}

// Sync reads every row and upserts one meeting per zone and date. Bad rows are
// skipped; a failed upsert stops the run.
func (s *SheetsSyncService) Sync(ctx context.Context) (*models.SyncResult, error) {
	rows, err := s.source.FetchRows(ctx)
	if err != nil {
		metrics.SheetsSyncs.WithLabelValues("error").Inc()
		return nil, err
	}

	meetings, skipped := ParseSheetRows(rows)
	result := &models.SyncResult{RowsRead: len(rows), RowsSkipped: len(skipped)}
	for _, sk := range skipped {
		s.logger.Warn().Int("row", sk.Row).Str("reason", sk.Reason).Msg("skipping sheet row")
	}
	metrics.SheetsRows.WithLabelValues("imported").Add(float64(len(rows) - len(skipped)))
	metrics.SheetsRows.WithLabelValues("skipped").Add(float64(len(skipped)))

	for _, m := range meetings {
		if _, err := s.meetings.UpsertByZoneDate(ctx, m); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				s.logger.Info().Str("zone", m.ZoneName).Str("date", m.Date).Msg("meeting already recorded in the app, keeping it")
				result.MeetingsKept++
				continue
			}
			metrics.SheetsSyncs.WithLabelValues("error").Inc()
			return result, fmt.Errorf("upsert meeting %s/%s: %w", m.ZoneName, m.Date, err)
		}
		result.MeetingsUpdated++
	}

	metrics.SheetsSyncs.WithLabelValues("ok").Inc()
	s.logger.Info().
		Int("rows", result.RowsRead).
		Int("skipped", result.RowsSkipped).
		Int("meetings", result.MeetingsUpdated).
		Int("kept", result.MeetingsKept).
		Msg("sheets import finished")
	return result, nil
}

// SkippedRow explains why a sheet row was not imported. Row is 1-based
// relative to the configured range.
type SkippedRow struct {
	Row    int
	Reason string
}

// ParseSheetRows groups rows into meetings by zone and date. Meetings come
// back ordered by date then zone; records keep sheet order.
func ParseSheetRows(rows [][]interface{}) ([]*models.Meeting, []SkippedRow) {
	byKey := map[string]*models.Meeting{}
	var skipped []SkippedRow

	for i, row := range rows {
		cell := func(col int) string {
			if col >= len(row) || row[col] == nil {
				return ""
			}
			return strings.TrimSpace(fmt.Sprint(row[col]))
		}

		if isBlankRow(row) {
			continue
		}

		d, err := attendance.ParseDate(cell(colDate))
		if err != nil {
			skipped = append(skipped, SkippedRow{Row: i + 1, Reason: err.Error()})
			continue
		}
		zone := utils.NormalizeName(cell(colZone))
		name := utils.NormalizeName(cell(colName))
		if zone == "" || name == "" {
			skipped = append(skipped, SkippedRow{Row: i + 1, Reason: "missing zone or name"})
			continue
		}
		status := attendance.NormalizeStatus(cell(colStatus))
		if status == "" {
			skipped = append(skipped, SkippedRow{Row: i + 1, Reason: fmt.Sprintf("unknown status %q", cell(colStatus))})
			continue
		}

		date := attendance.FormatDate(d)
		key := zone + "\x00" + date
		m, ok := byKey[key]
		if !ok {
			m = &models.Meeting{ZoneName: zone, Date: date, Source: models.SourceSheets, Attendance: []models.AttendanceRecord{}}
			byKey[key] = m
		}
		rec := models.AttendanceRecord{
			PersonName: name,
			Role:       cell(colRole),
			Status:     status,
		}
		if status == models.StatusLeave {
			rec.Reason = utils.StripMarkup(cell(colReason))
		}
		m.Attendance = append(m.Attendance, rec)
	}

	out := make([]*models.Meeting, 0, len(byKey))
	for _, m := range byKey {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ZoneName < out[j].ZoneName
	})
	return out, skipped
}

func isBlankRow(row []interface{}) bool {
	for _, v := range row {
		if v != nil && strings.TrimSpace(fmt.Sprint(v)) != "" {
			return false
		}
	}
	return true
}
