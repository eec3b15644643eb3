package handlers

import (
	"context"
	"net/http"
	"time"

	"meetingtracker-be/internal/middleware"
	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// OrgStore is the district / zone / unit persistence.
type OrgStore interface {
	CreateDistrict(ctx context.Context, d *models.District) error
	ListDistricts(ctx context.Context) ([]*models.District, error)
	GetDistrict(ctx context.Context, id string) (*models.District, error)
	UpdateDistrict(ctx context.Context, id string, req models.DistrictRequest) (*models.District, error)
	DeleteDistrict(ctx context.Context, id string) error

	CreateZone(ctx context.Context, z *models.Zone) error
	ListZones(ctx context.Context, names []string) ([]*models.Zone, error)
	GetZone(ctx context.Context, id string) (*models.Zone, error)
	UpdateZone(ctx context.Context, id string, req models.ZoneRequest) (*models.Zone, error)
	RenameZone(ctx context.Context, oldName, newName string) error
	DeleteZone(ctx context.Context, id string) error

	CreateUnit(ctx context.Context, u *models.Unit) error
	ListUnits(ctx context.Context, zones []string) ([]*models.Unit, error)
	GetUnit(ctx context.Context, id string) (*models.Unit, error)
	UpdateUnit(ctx context.Context, id string, name string, zone *models.Zone) (*models.Unit, error)
	DeleteUnit(ctx context.Context, id string) error
}

// OrgHandler serves the district / zone / unit hierarchy.
type OrgHandler struct {
	repo    OrgStore
	timeout time.Duration
}

func NewOrgHandler(repo OrgStore, timeout time.Duration) *OrgHandler {
	return &OrgHandler{repo: repo, timeout: timeout}
}

// ===== Districts =====

func (h *OrgHandler) ListDistricts(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	districts, err := h.repo.ListDistricts(ctx)
	if err != nil {
		respondStoreError(c, err, "district")
		return
	}
	c.JSON(http.StatusOK, gin.H{"districts": districts})
}

func (h *OrgHandler) GetDistrict(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	d, err := h.repo.GetDistrict(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "district")
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *OrgHandler) CreateDistrict(c *gin.Context) {
	var req models.DistrictRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	d := &models.District{Name: utils.NormalizeName(req.Name)}
	if err := h.repo.CreateDistrict(ctx, d); err != nil {
		respondStoreError(c, err, "district")
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *OrgHandler) UpdateDistrict(c *gin.Context) {
	var req models.DistrictRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Name = utils.NormalizeName(req.Name)

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	d, err := h.repo.UpdateDistrict(ctx, c.Param("id"), req)
	if err != nil {
		respondStoreError(c, err, "district")
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *OrgHandler) DeleteDistrict(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if err := h.repo.DeleteDistrict(ctx, c.Param("id")); err != nil {
		respondStoreError(c, err, "district")
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== Zones =====

// ListZones returns the zones the caller can see.
func (h *OrgHandler) ListZones(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	zones, err := h.repo.ListZones(ctx, middleware.GetPrincipal(c).VisibleZones())
	if err != nil {
		respondStoreError(c, err, "zone")
		return
	}
	c.JSON(http.StatusOK, gin.H{"zones": zones})
}

func (h *OrgHandler) GetZone(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	z, err := h.repo.GetZone(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "zone")
		return
	}
	if !middleware.GetPrincipal(c).CanViewZone(z.Name) {
		respondError(c, http.StatusForbidden, "forbidden", "No access to zone "+z.Name)
		return
	}
	c.JSON(http.StatusOK, z)
}

func (h *OrgHandler) CreateZone(c *gin.Context) {
	var req models.ZoneRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if _, err := h.repo.GetDistrict(ctx, req.DistrictID); err != nil {
		respondStoreError(c, err, "district")
		return
	}

	z := &models.Zone{
		Name:        utils.NormalizeName(req.Name),
		DistrictID:  req.DistrictID,
		MeetingDay:  req.MeetingDay,
		Description: utils.StripMarkup(req.Description),
	}
	if err := h.repo.CreateZone(ctx, z); err != nil {
		respondStoreError(c, err, "zone")
		return
	}
	c.JSON(http.StatusCreated, z)
}

func (h *OrgHandler) UpdateZone(c *gin.Context) {
	var req models.ZoneRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Name = utils.NormalizeName(req.Name)
	req.Description = utils.StripMarkup(req.Description)

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	existing, err := h.repo.GetZone(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "zone")
		return
	}
	if _, err := h.repo.GetDistrict(ctx, req.DistrictID); err != nil {
		respondStoreError(c, err, "district")
		return
	}
	z, err := h.repo.UpdateZone(ctx, existing.ID.Hex(), req)
	if err != nil {
		respondStoreError(c, err, "zone")
		return
	}
	if z.Name != existing.Name {
		if err := h.repo.RenameZone(ctx, existing.Name, z.Name); err != nil {
			respondStoreError(c, err, "zone")
			return
		}
		zerolog.Ctx(c.Request.Context()).Info().Str("from", existing.Name).Str("to", z.Name).Msg("zone renamed")
	}
	c.JSON(http.StatusOK, z)
}

func (h *OrgHandler) DeleteZone(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if err := h.repo.DeleteZone(ctx, c.Param("id")); err != nil {
		respondStoreError(c, err, "zone")
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== Units =====

func (h *OrgHandler) ListUnits(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	units, err := h.repo.ListUnits(ctx, middleware.GetPrincipal(c).VisibleZones())
	if err != nil {
		respondStoreError(c, err, "unit")
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": units})
}

// managedZone loads a zone by id and checks the caller may manage it.
func (h *OrgHandler) managedZone(c *gin.Context, zoneID string) (*models.Zone, bool) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	zone, err := h.repo.GetZone(ctx, zoneID)
	if err != nil {
		respondStoreError(c, err, "zone")
		return nil, false
	}
	if !middleware.GetPrincipal(c).CanManageZone(zone.Name) {
		respondError(c, http.StatusForbidden, "forbidden", "Cannot manage zone "+zone.Name)
		return nil, false
	}
	return zone, true
}

func (h *OrgHandler) CreateUnit(c *gin.Context) {
	var req models.UnitRequest
	if !bindJSON(c, &req) {
		return
	}
	zone, ok := h.managedZone(c, req.ZoneID)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	u := &models.Unit{Name: utils.NormalizeName(req.Name), ZoneID: zone.ID.Hex(), ZoneName: zone.Name}
	if err := h.repo.CreateUnit(ctx, u); err != nil {
		respondStoreError(c, err, "unit")
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *OrgHandler) UpdateUnit(c *gin.Context) {
	var req models.UnitRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	existing, err := h.repo.GetUnit(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "unit")
		return
	}
	if !middleware.GetPrincipal(c).CanManageZone(existing.ZoneName) {
		respondError(c, http.StatusForbidden, "forbidden", "Cannot manage zone "+existing.ZoneName)
		return
	}
	zone, ok := h.managedZone(c, req.ZoneID)
	if !ok {
		return
	}

	u, err := h.repo.UpdateUnit(ctx, c.Param("id"), utils.NormalizeName(req.Name), zone)
	if err != nil {
		respondStoreError(c, err, "unit")
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *OrgHandler) DeleteUnit(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	existing, err := h.repo.GetUnit(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "unit")
		return
	}
	if !middleware.GetPrincipal(c).CanManageZone(existing.ZoneName) {
		respondError(c, http.StatusForbidden, "forbidden", "Cannot manage zone "+existing.ZoneName)
		return
	}
	if err := h.repo.DeleteUnit(ctx, existing.ID.Hex()); err != nil {
		respondStoreError(c, err, "unit")
		return
	}
	c.Status(http.StatusNoContent)
}
