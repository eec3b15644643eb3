package handlers

import (
	"net/http"
	"strings"
	"time"

	"meetingtracker-be/internal/access"
	"meetingtracker-be/internal/middleware"
	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users   UserStore
	timeout time.Duration
}

func NewUserHandler(users UserStore, timeout time.Duration) *UserHandler {
	return &UserHandler{users: users, timeout: timeout}
}

func cleanZones(zones []string) []string {
	out := make([]string, 0, len(zones))
	seen := map[string]bool{}
	for _, z := range zones {
		z = utils.NormalizeName(z)
		if z != "" && !seen[z] {
			seen[z] = true
			out = append(out, z)
		}
	}
	return out
}

// List returns users visible to the caller: everyone for district-wide roles,
// otherwise users sharing one of the caller's zones.
func (h *UserHandler) List(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	users, err := h.users.List(ctx, middleware.GetPrincipal(c).VisibleZones())
	if err != nil {
		respondStoreError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Create registers a member account. Admin only.
func (h *UserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "server_error", "Failed to process password")
		return
	}

	user := &models.User{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: hash,
		Name:     utils.NormalizeName(req.Name),
		Phone:    strings.TrimSpace(req.Phone),
		Role:     string(access.ParseRole(req.Role)),
		Zones:    cleanZones(req.Zones),
		UnitID:   req.UnitID,
		Active:   true,
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if err := h.users.Create(ctx, user); err != nil {
		respondStoreError(c, err, "user")
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	user, err := h.users.FindByID(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "user")
		return
	}
	if !canSeeUser(middleware.GetPrincipal(c), user) {
		respondError(c, http.StatusNotFound, "not_found", "user not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

func canSeeUser(p *access.Principal, user *models.User) bool {
	if p.CanViewAllZones() || p.UserID == user.ID.Hex() {
		return true
	}
	for _, z := range user.Zones {
		if p.CanViewZone(z) {
			return true
		}
	}
	return false
}

// Update applies the provided fields. Admin only.
func (h *UserHandler) Update(c *gin.Context) {
	var req models.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	user, err := h.users.FindByID(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "user")
		return
	}

	if req.Name != nil {
		user.Name = utils.NormalizeName(*req.Name)
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Role != nil {
		user.Role = string(access.ParseRole(*req.Role))
	}
	if req.Zones != nil {
		user.Zones = cleanZones(req.Zones)
	}
	if req.UnitID != nil {
		user.UnitID = *req.UnitID
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := h.users.Update(ctx, user); err != nil {
		respondStoreError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	if c.Param("id") == c.GetString(middleware.ContextUserID) {
		respondError(c, http.StatusBadRequest, "invalid_request", "You cannot delete your own account")
		return
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if err := h.users.Delete(ctx, c.Param("id")); err != nil {
		respondStoreError(c, err, "user")
		return
	}
	c.Status(http.StatusNoContent)
}
