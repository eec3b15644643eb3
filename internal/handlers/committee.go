package handlers

import (
	"context"
	"net/http"
	"time"

	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/utils"

	"github.com/gin-gonic/gin"
)

type CommitteeStore interface {
	Create(ctx context.Context, c *models.Committee) error
	List(ctx context.Context) ([]*models.Committee, error)
	Get(ctx context.Context, id string) (*models.Committee, error)
	Update(ctx context.Context, id string, req models.CommitteeRequest) (*models.Committee, error)
	Delete(ctx context.Context, id string) error
	CreateRole(ctx context.Context, role *models.CommitteeRole) error
	ListRoles(ctx context.Context, committeeID string) ([]*models.CommitteeRole, error)
	DeleteRole(ctx context.Context, id string) error
}

type CommitteeHandler struct {
	repo    CommitteeStore
	timeout time.Duration
}

func NewCommitteeHandler(repo CommitteeStore, timeout time.Duration) *CommitteeHandler {
	return &CommitteeHandler{repo: repo, timeout: timeout}
}

func cleanCommittee(req *models.CommitteeRequest) {
	req.Name = utils.NormalizeName(req.Name)
	req.Description = utils.StripMarkup(req.Description)
	for i := range req.Members {
		req.Members[i].Name = utils.NormalizeName(req.Members[i].Name)
	}
}

func (h *CommitteeHandler) List(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	committees, err := h.repo.List(ctx)
	if err != nil {
		respondStoreError(c, err, "committee")
		return
	}
	c.JSON(http.StatusOK, gin.H{"committees": committees})
}

func (h *CommitteeHandler) Get(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	committee, err := h.repo.Get(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "committee")
		return
	}
	c.JSON(http.StatusOK, committee)
}

func (h *CommitteeHandler) Create(c *gin.Context) {
	var req models.CommitteeRequest
	if !bindJSON(c, &req) {
		return
	}
	cleanCommittee(&req)

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	committee := &models.Committee{Name: req.Name, Description: req.Description, Members: req.Members}
	if err := h.repo.Create(ctx, committee); err != nil {
		respondStoreError(c, err, "committee")
		return
	}
	c.JSON(http.StatusCreated, committee)
}

func (h *CommitteeHandler) Update(c *gin.Context) {
	var req models.CommitteeRequest
	if !bindJSON(c, &req) {
		return
	}
	cleanCommittee(&req)

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	committee, err := h.repo.Update(ctx, c.Param("id"), req)
	if err != nil {
		respondStoreError(c, err, "committee")
		return
	}
	c.JSON(http.StatusOK, committee)
}

func (h *CommitteeHandler) Delete(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if err := h.repo.Delete(ctx, c.Param("id")); err != nil {
		respondStoreError(c, err, "committee")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CommitteeHandler) ListRoles(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	roles, err := h.repo.ListRoles(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "committee role")
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

func (h *CommitteeHandler) CreateRole(c *gin.Context) {
	var req models.CommitteeRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	committeeID := c.Param("id")
	if _, err := h.repo.Get(ctx, committeeID); err != nil {
		respondStoreError(c, err, "committee")
		return
	}

	role := &models.CommitteeRole{CommitteeID: committeeID, Name: utils.NormalizeName(req.Name), Rank: req.Rank}
	if err := h.repo.CreateRole(ctx, role); err != nil {
		respondStoreError(c, err, "committee role")
		return
	}
	c.JSON(http.StatusCreated, role)
}

func (h *CommitteeHandler) DeleteRole(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if err := h.repo.DeleteRole(ctx, c.Param("id")); err != nil {
		respondStoreError(c, err, "committee role")
		return
	}
	c.Status(http.StatusNoContent)
}
