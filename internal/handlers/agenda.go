package handlers

import (
	"context"
	"net/http"
	"time"

	"meetingtracker-be/internal/attendance"
	"meetingtracker-be/internal/middleware"
	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/repository"
	"meetingtracker-be/internal/utils"

	"github.com/gin-gonic/gin"
)

type AgendaStore interface {
	Create(ctx context.Context, a *models.Agenda) error
	List(ctx context.Context, f repository.MeetingFilter) ([]*models.Agenda, error)
	Get(ctx context.Context, id string) (*models.Agenda, error)
	Update(ctx context.Context, id string, req models.AgendaRequest) (*models.Agenda, error)
	Delete(ctx context.Context, id string) error
}

type AgendaHandler struct {
	agendas AgendaStore
	timeout time.Duration
}

func NewAgendaHandler(agendas AgendaStore, timeout time.Duration) *AgendaHandler {
	return &AgendaHandler{agendas: agendas, timeout: timeout}
}

// cleanAgenda normalizes the request in place and drops blank items.
func cleanAgenda(req *models.AgendaRequest) error {
	day, err := attendance.ParseDate(req.Date)
	if err != nil {
		return err
	}
	req.Date = attendance.FormatDate(day)
	req.ZoneName = utils.NormalizeName(req.ZoneName)
	req.Title = utils.StripMarkup(req.Title)

	items := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		if item = utils.StripMarkup(item); item != "" {
			items = append(items, item)
		}
	}
	req.Items = items
	return nil
}

func (h *AgendaHandler) List(c *gin.Context) {
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

	agendas, err := h.agendas.List(ctx, repository.MeetingFilter{
		Start: formatOptional(start),
		End:   formatOptional(end),
		Zones: zones,
	})
	if err != nil {
		respondStoreError(c, err, "agenda")
		return
	}
	c.JSON(http.StatusOK, gin.H{"agendas": agendas})
}

func (h *AgendaHandler) Create(c *gin.Context) {
	var req models.AgendaRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := cleanAgenda(&req); err != nil {
		respondStoreError(c, err, "agenda")
		return
	}
	p := middleware.GetPrincipal(c)
	if !p.CanManageZone(req.ZoneName) {
		respondError(c, http.StatusForbidden, "forbidden", "Cannot plan meetings for zone "+req.ZoneName)
		return
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	a := &models.Agenda{
		ZoneName:  req.ZoneName,
		Date:      req.Date,
		Title:     req.Title,
		Items:     req.Items,
		CreatedBy: p.UserID,
	}
	if err := h.agendas.Create(ctx, a); err != nil {
		respondStoreError(c, err, "agenda")
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *AgendaHandler) Update(c *gin.Context) {
	var req models.AgendaRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := cleanAgenda(&req); err != nil {
		respondStoreError(c, err, "agenda")
		return
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	existing, err := h.agendas.Get(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "agenda")
		return
	}
	p := middleware.GetPrincipal(c)
	if !p.CanManageZone(existing.ZoneName) || !p.CanManageZone(req.ZoneName) {
		respondError(c, http.StatusForbidden, "forbidden", "Cannot plan meetings for zone "+existing.ZoneName)
		return
	}

	a, err := h.agendas.Update(ctx, existing.ID.Hex(), req)
	if err != nil {
		respondStoreError(c, err, "agenda")
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AgendaHandler) Delete(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	existing, err := h.agendas.Get(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "agenda")
		return
	}
	if !middleware.GetPrincipal(c).CanManageZone(existing.ZoneName) {
		respondError(c, http.StatusForbidden, "forbidden", "Cannot plan meetings for zone "+existing.ZoneName)
		return
	}
	if err := h.agendas.Delete(ctx, existing.ID.Hex()); err != nil {
		respondStoreError(c, err, "agenda")
		return
	}
	c.Status(http.StatusNoContent)
}
