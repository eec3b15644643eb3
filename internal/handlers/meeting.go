package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"meetingtracker-be/internal/access"
	"meetingtracker-be/internal/attendance"
	"meetingtracker-be/internal/middleware"
	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/repository"
	"meetingtracker-be/internal/utils"

	"github.com/gin-gonic/gin"
)

// MeetingStore is the meeting persistence used by the meeting and dashboard handlers.
type MeetingStore interface {
	Create(ctx context.Context, m *models.Meeting) error
	Get(ctx context.Context, id string) (*models.Meeting, error)
	Find(ctx context.Context, f repository.MeetingFilter) ([]models.Meeting, error)
	Update(ctx context.Context, m *models.Meeting) error
	Delete(ctx context.Context, id string) error
	People(ctx context.Context, f repository.MeetingFilter) ([]models.PersonSuggestion, error)
}

type MeetingHandler struct {
	meetings MeetingStore
	timeout  time.Duration
}

func NewMeetingHandler(meetings MeetingStore, timeout time.Duration) *MeetingHandler {
	return &MeetingHandler{meetings: meetings, timeout: timeout}
}

// zoneScope resolves the zone query parameter against what the caller may see.
// It returns the zones to filter on (nil for every zone) and false after
// writing a 403 for a zone outside the caller's reach.
func zoneScope(c *gin.Context, p *access.Principal, zone string) ([]string, bool) {
	zone = strings.TrimSpace(zone)
	if zone == "" || strings.EqualFold(zone, attendance.AllZones) {
		return p.VisibleZones(), true
	}
	if !p.CanViewZone(zone) {
		respondError(c, http.StatusForbidden, "forbidden", "No access to zone "+zone)
		return nil, false
	}
	return []string{zone}, true
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(c *gin.Context, key string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	d, err := attendance.ParseDate(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_date", key+": "+err.Error())
		return nil, false
	}
	return &d, true
}

func formatOptional(d *time.Time) string {
	if d == nil {
		return ""
	}
	return attendance.FormatDate(*d)
}

// List returns meetings in an optional date range and zone.
// @Summary List meetings
// @Tags meetings
// @Security BearerAuth
// @Produce json
// @Param start query string false "start date (YYYY-MM-DD)"
// @Param end query string false "end date (YYYY-MM-DD)"
// @Param zone query string false "zone name or all"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /meetings [get]
func (h *MeetingHandler) List(c *gin.Context) {
	start, ok := queryDate(c, "start")
	if !ok {
		return
	}
	end, ok := queryDate(c, "end")
	if !ok {
		return
	}
	zones, ok := zoneScope(c, middleware.GetPrincipal(c), c.Query("zone"))
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	meetings, err := h.meetings.Find(ctx, repository.MeetingFilter{
		Start: formatOptional(start),
		End:   formatOptional(end),
		Zones: zones,
	})
	if err != nil {
		respondStoreError(c, err, "meeting")
		return
	}
	c.JSON(http.StatusOK, gin.H{"meetings": meetings})
}

// Week returns the meetings held in the Wednesday to Tuesday week containing
// the date parameter (today when absent).
func (h *MeetingHandler) Week(c *gin.Context) {
	day, ok := queryDate(c, "date")
	if !ok {
		return
	}
	if day == nil {
		today := time.Now()
		day = &today
	}
	zones, ok := zoneScope(c, middleware.GetPrincipal(c), c.Query("zone"))
	if !ok {
		return
	}

	start, end := attendance.WeekBounds(*day)

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	meetings, err := h.meetings.Find(ctx, repository.MeetingFilter{
		Start: attendance.FormatDate(start),
		End:   attendance.FormatDate(end),
		Zones: zones,
	})
	if err != nil {
		respondStoreError(c, err, "meeting")
		return
	}

	resp := models.WeekMeetings{
		WeekStart: attendance.FormatDate(start),
		WeekEnd:   attendance.FormatDate(end),
		Meetings:  make([]*models.Meeting, 0, len(meetings)),
	}
	for i := range meetings {
		resp.Meetings = append(resp.Meetings, &meetings[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MeetingHandler) Get(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	m, err := h.meetings.Get(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "meeting")
		return
	}
	if !middleware.GetPrincipal(c).CanViewZone(m.ZoneName) {
		respondError(c, http.StatusNotFound, "not_found", "meeting not found")
		return
	}
	c.JSON(http.StatusOK, m)
}

// cleanMeeting validates and normalizes a meeting request. Names are NFC
// normalized so the aggregator's exact-name join sees one spelling.
func cleanMeeting(req models.MeetingRequest) (*models.Meeting, error) {
	day, err := attendance.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	m := &models.Meeting{
		ZoneName:   utils.NormalizeName(req.ZoneName),
		Date:       attendance.FormatDate(day),
		AgendaID:   strings.TrimSpace(req.AgendaID),
		Notes:      utils.StripMarkup(req.Notes),
		Attendance: make([]models.AttendanceRecord, 0, len(req.Attendance)),
	}
	seen := make(map[string]struct{}, len(req.Attendance))
	for i, rec := range req.Attendance {
		name := utils.NormalizeName(rec.PersonName)
		if name == "" {
			return nil, &recordError{index: i, msg: "name is required"}
		}
		status := attendance.NormalizeStatus(rec.Status)
		if status == "" {
			return nil, &recordError{index: i, msg: "unknown status " + strconv.Quote(rec.Status)}
		}
		key := strings.TrimSpace(rec.PersonID)
		if key == "" {
			key = "name:" + name
		}
		if _, dup := seen[key]; dup {
			return nil, &recordError{index: i, msg: name + " is listed twice"}
		}
		seen[key] = struct{}{}

		out := models.AttendanceRecord{
			PersonName: name,
			PersonID:   strings.TrimSpace(rec.PersonID),
			Role:       utils.NormalizeName(rec.Role),
			Status:     status,
		}
		if status != models.StatusPresent {
			out.Reason = utils.StripMarkup(rec.Reason)
		}
		m.Attendance = append(m.Attendance, out)
	}
	return m, nil
}

type recordError struct {
	index int
	msg   string
}

func (e *recordError) Error() string {
	return "attendance[" + strconv.Itoa(e.index) + "]: " + e.msg
}

// Create records a meeting for a zone the caller manages.
// @Summary Record a meeting
// @Tags meetings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.MeetingRequest true "meeting"
// @Success 201 {object} models.Meeting
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /meetings [post]
func (h *MeetingHandler) Create(c *gin.Context) {
	var req models.MeetingRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := cleanMeeting(req)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	p := middleware.GetPrincipal(c)
	if !p.CanManageZone(m.ZoneName) {
		respondError(c, http.StatusForbidden, "forbidden", "Cannot record meetings for zone "+m.ZoneName)
		return
	}
	m.Source = models.SourceApp
	m.CreatedBy = p.UserID

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if err := h.meetings.Create(ctx, m); err != nil {
		respondStoreError(c, err, "meeting")
		return
	}
	c.JSON(http.StatusCreated, m)
}

// Update replaces a meeting's fields. Editing an imported meeting claims it for
// the app so later imports leave it alone.
func (h *MeetingHandler) Update(c *gin.Context) {
	var req models.MeetingRequest
	if !bindJSON(c, &req) {
		return
	}
	updated, err := cleanMeeting(req)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	existing, err := h.meetings.Get(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "meeting")
		return
	}
	p := middleware.GetPrincipal(c)
	if !p.CanManageZone(existing.ZoneName) || !p.CanManageZone(updated.ZoneName) {
		respondError(c, http.StatusForbidden, "forbidden", "Cannot edit meetings for zone "+existing.ZoneName)
		return
	}

	updated.ID = existing.ID
	updated.Source = models.SourceApp
	updated.CreatedBy = existing.CreatedBy
	updated.CreatedAt = existing.CreatedAt
	if err := h.meetings.Update(ctx, updated); err != nil {
		respondStoreError(c, err, "meeting")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *MeetingHandler) Delete(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	existing, err := h.meetings.Get(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "meeting")
		return
	}
	if !middleware.GetPrincipal(c).CanManageZone(existing.ZoneName) {
		respondError(c, http.StatusForbidden, "forbidden", "Cannot delete meetings for zone "+existing.ZoneName)
		return
	}
	if err := h.meetings.Delete(ctx, existing.ID.Hex()); err != nil {
		respondStoreError(c, err, "meeting")
		return
	}
	c.Status(http.StatusNoContent)
}
