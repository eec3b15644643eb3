package handlers

import (
	"context"
	"errors"
	"net/http"

	"meetingtracker-be/config"
	"meetingtracker-be/internal/access"
	"meetingtracker-be/internal/middleware"
	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserStore is the user persistence used by the auth and user handlers.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, zones []string) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateRefreshToken(ctx context.Context, userID, refreshToken string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

type AuthHandler struct {
	cfg   *config.Config
	users UserStore
}

func NewAuthHandler(cfg *config.Config, users UserStore) *AuthHandler {
	return &AuthHandler{
		cfg:   cfg,
		users: users,
	}
}

func subjectOf(user *models.User) utils.TokenSubject {
	return utils.TokenSubject{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Role:   string(access.ParseRole(user.Role)),
		Zones:  user.Zones,
	}
}

// issueTokens creates an access/refresh pair and stores the refresh token.
func (h *AuthHandler) issueTokens(ctx context.Context, user *models.User) (string, string, error) {
	sub := subjectOf(user)
	accessToken, err := utils.GenerateAccessToken(sub, h.cfg.JWTSecret, h.cfg.JWTAccessExpiration)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := utils.GenerateRefreshToken(sub, h.cfg.JWTSecret, h.cfg.JWTRefreshExpiration)
	if err != nil {
		return "", "", err
	}
	if err := h.users.UpdateRefreshToken(ctx, sub.UserID, refreshToken); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c, h.cfg.RequestTimeout)
	defer cancel()

	user, err := h.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
			return
		}
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("login: find user")
		respondError(c, http.StatusInternalServerError, "server_error", "Failed to find user")
		return
	}

	if err := utils.CheckPassword(user.Password, req.Password); err != nil {
		respondError(c, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		return
	}
	if !user.Active {
		respondError(c, http.StatusForbidden, "account_disabled", "Account is disabled")
		return
	}

	accessToken, refreshToken, err := h.issueTokens(ctx, user)
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("user_id", user.ID.Hex()).Msg("login: issue tokens")
		respondError(c, http.StatusInternalServerError, "token_generation_failed", "Failed to generate tokens")
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	})
}

// RefreshToken godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body models.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	claims, err := utils.ValidateToken(req.RefreshToken, h.cfg.JWTSecret)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "invalid_refresh_token", "Invalid or expired refresh token")
		return
	}
	if claims.TokenType != utils.TokenTypeRefresh {
		respondError(c, http.StatusUnauthorized, "invalid_token_type", "Token is not a refresh token")
		return
	}

	ctx, cancel := withTimeout(c, h.cfg.RequestTimeout)
	defer cancel()

	user, err := h.users.FindByID(ctx, claims.UserID)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "invalid_refresh_token", "User not found")
		return
	}

	// rotation: only the most recently issued refresh token is accepted
	if user.RefreshToken == "" || user.RefreshToken != req.RefreshToken {
		respondError(c, http.StatusUnauthorized, "invalid_refresh_token", "Refresh token not found or revoked")
		return
	}
	if !user.Active {
		respondError(c, http.StatusForbidden, "account_disabled", "Account is disabled")
		return
	}

	accessToken, refreshToken, err := h.issueTokens(ctx, user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "token_generation_failed", "Failed to generate tokens")
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	})
}

// Logout handles user logout
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	ctx, cancel := withTimeout(c, h.cfg.RequestTimeout)
	defer cancel()

	// Revoke refresh token
	if err := h.users.UpdateRefreshToken(ctx, userID, ""); err != nil {
		respondStoreError(c, err, "user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetMe returns the current user's profile
func (h *AuthHandler) GetMe(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.cfg.RequestTimeout)
	defer cancel()

	user, err := h.users.FindByID(ctx, c.GetString(middleware.ContextUserID))
	if err != nil {
		respondStoreError(c, err, "user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// ChangePassword replaces the caller's password and revokes their refresh token.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c, h.cfg.RequestTimeout)
	defer cancel()

	user, err := h.users.FindByID(ctx, c.GetString(middleware.ContextUserID))
	if err != nil {
		respondStoreError(c, err, "user")
		return
	}
	if err := utils.CheckPassword(user.Password, req.CurrentPassword); err != nil {
		respondError(c, http.StatusUnauthorized, "invalid_credentials", "Current password is wrong")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "server_error", "Failed to process password")
		return
	}
	if err := h.users.UpdatePassword(ctx, user.ID.Hex(), hash); err != nil {
		respondStoreError(c, err, "user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
