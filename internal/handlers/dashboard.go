package handlers

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"meetingtracker-be/internal/attendance"
	"meetingtracker-be/internal/metrics"
	"meetingtracker-be/internal/middleware"
	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/repository"
	"meetingtracker-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sahilm/fuzzy"
)

const (
	// defaultReportWeeks is the dashboard range when neither bound is given.
	defaultReportWeeks = 12
	suggestLookback    = 26 * 7 * 24 * time.Hour
	maxSuggestions     = 10
)

type ZoneLister interface {
	ListZones(ctx context.Context, names []string) ([]*models.Zone, error)
}

type DashboardHandler struct {
	meetings MeetingStore
	zones    ZoneLister
	timeout  time.Duration
	now      func() time.Time
}

func NewDashboardHandler(meetings MeetingStore, zones ZoneLister, timeout time.Duration) *DashboardHandler {
	return &DashboardHandler{meetings: meetings, zones: zones, timeout: timeout, now: time.Now}
}

// Attendance builds the attendance report for a date range and zone.
// @Summary Attendance report
// @Description Per-person totals, leave streaks, the at-risk list and the weekly grid.
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Param start query string false "start date (YYYY-MM-DD), default 12 weeks before end"
// @Param end query string false "end date (YYYY-MM-DD), default today"
// @Param zone query string false "zone name or all"
// @Success 200 {object} attendance.Report
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /dashboard/attendance [get]
func (h *DashboardHandler) Attendance(c *gin.Context) {
	start, ok := queryDate(c, "start")
	if !ok {
		return
	}
	end, ok := queryDate(c, "end")
	if !ok {
		return
	}
	if start == nil && end == nil {
		today := h.now()
		from := today.AddDate(0, 0, -7*defaultReportWeeks)
		start, end = &from, &today
	}
	if start != nil && end != nil && attendance.FormatDate(*start) > attendance.FormatDate(*end) {
		respondError(c, http.StatusBadRequest, "invalid_range", "start is after end")
		return
	}

	zone := strings.TrimSpace(c.Query("zone"))
	zones, ok := zoneScope(c, middleware.GetPrincipal(c), zone)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	// Malformed legacy dates come back so the report can warn about them.
	meetings, err := h.meetings.Find(ctx, repository.MeetingFilter{
		Start:              formatOptional(start),
		End:                formatOptional(end),
		Zones:              zones,
		KeepMalformedDates: true,
	})
	if err != nil {
		respondStoreError(c, err, "meeting")
		return
	}

	report := attendance.Aggregate(attendance.Query{Start: start, End: end, Zone: zone}, meetings)

	logger := zerolog.Ctx(c.Request.Context())
	for _, w := range report.Warnings {
		metrics.ReportWarnings.WithLabelValues(w.Kind).Inc()
		logger.Debug().Str("kind", w.Kind).Str("meeting_id", w.MeetingID).Str("zone", w.Zone).
			Str("date", w.Date).Msg(w.Message)
	}
	if len(report.Warnings) > 0 {
		logger.Info().Int("warnings", len(report.Warnings)).Int("meetings", report.TotalMeetings).
			Msg("attendance report built with warnings")
	}

	c.JSON(http.StatusOK, report)
}

// PendingZones lists the visible zones with no meeting in the week of date.
// @Summary Zones that have not met this week
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Param date query string false "any date in the week (YYYY-MM-DD), default today"
// @Success 200 {object} models.PendingZonesResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /dashboard/pending-zones [get]
func (h *DashboardHandler) PendingZones(c *gin.Context) {
	day, ok := queryDate(c, "date")
	if !ok {
		return
	}
	if day == nil {
		today := h.now()
		day = &today
	}
	start, end := attendance.WeekBounds(*day)
	visible := middleware.GetPrincipal(c).VisibleZones()

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	zones, err := h.zones.ListZones(ctx, visible)
	if err != nil {
		respondStoreError(c, err, "zone")
		return
	}
	meetings, err := h.meetings.Find(ctx, repository.MeetingFilter{
		Start: attendance.FormatDate(start),
		End:   attendance.FormatDate(end),
		Zones: visible,
	})
	if err != nil {
		respondStoreError(c, err, "meeting")
		return
	}

	met := make(map[string]struct{}, len(meetings))
	for _, m := range meetings {
		met[m.ZoneName] = struct{}{}
	}

	resp := models.PendingZonesResponse{
		WeekStart:    attendance.FormatDate(start),
		WeekEnd:      attendance.FormatDate(end),
		PendingZones: []string{},
		MetZones:     []string{},
	}
	for _, z := range zones {
		if _, ok := met[z.Name]; ok {
			resp.MetZones = append(resp.MetZones, z.Name)
		} else {
			resp.PendingZones = append(resp.PendingZones, z.Name)
		}
	}
	sort.Strings(resp.PendingZones)
	sort.Strings(resp.MetZones)
	c.JSON(http.StatusOK, resp)
}

// people adapts suggestions to fuzzy.Source, matching on folded names so
// case and accents do not matter.
type people []models.PersonSuggestion

func (p people) String(i int) string { return utils.FoldName(p[i].Name) }
func (p people) Len() int            { return len(p) }

// SuggestPeople returns attendees from recent meetings whose names fuzzily
// match q, best match first.
func (h *DashboardHandler) SuggestPeople(c *gin.Context) {
	q := utils.FoldName(c.Query("q"))
	if q == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "q is required")
		return
	}
	zones, ok := zoneScope(c, middleware.GetPrincipal(c), c.Query("zone"))
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	known, err := h.meetings.People(ctx, repository.MeetingFilter{
		Start: attendance.FormatDate(h.now().Add(-suggestLookback)),
		Zones: zones,
	})
	if err != nil {
		respondStoreError(c, err, "person")
		return
	}

	matches := fuzzy.FindFrom(q, people(known))
	out := make([]models.PersonSuggestion, 0, maxSuggestions)
	for _, match := range matches {
		if len(out) == maxSuggestions {
			break
		}
		s := known[match.Index]
		s.Score = match.Score
		out = append(out, s)
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": out})
}
