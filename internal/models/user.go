package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PersonID     string             `json:"personId" bson:"personId"` // stable identity, assigned once at creation
	Email        string             `json:"email" bson:"email"`
	Password     string             `json:"-" bson:"password"` // Never send password to client
	Name         string             `json:"name" bson:"name"`
	Phone        string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Role         string             `json:"role" bson:"role"`
	Zones        []string           `json:"zones" bson:"zones"` // zone names the user may act on
	UnitID       string             `json:"unitId,omitempty" bson:"unitId,omitempty"`
	Active       bool               `json:"active" bson:"active"`
	RefreshToken string             `json:"-" bson:"refreshToken,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type CreateUserRequest struct {
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=6"`
	Name     string   `json:"name" binding:"required"`
	Phone    string   `json:"phone"`
	Role     string   `json:"role" binding:"required,oneof=admin district_leader zone_leader member"`
	Zones    []string `json:"zones"`
	UnitID   string   `json:"unitId"`
}

type UpdateUserRequest struct {
	Name   *string  `json:"name"`
	Phone  *string  `json:"phone"`
	Role   *string  `json:"role" binding:"omitempty,oneof=admin district_leader zone_leader member"`
	Zones  []string `json:"zones"`
	UnitID *string  `json:"unitId"`
	Active *bool    `json:"active"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
