package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Committee struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Members     []CommitteeMember  `json:"members" bson:"members"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type CommitteeMember struct {
	UserID string `json:"userId" bson:"userId"`
	Name   string `json:"name" bson:"name"`
	RoleID string `json:"roleId" bson:"roleId"`
}

// CommitteeRole is a named position inside a committee (chair, secretary, ...).
type CommitteeRole struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CommitteeID string             `json:"committeeId" bson:"committeeId"`
	Name        string             `json:"name" bson:"name"`
	Rank        int                `json:"rank" bson:"rank"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

type CommitteeRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description"`
	Members     []CommitteeMember `json:"members"`
}

type CommitteeRoleRequest struct {
	Name string `json:"name" binding:"required"`
	Rank int    `json:"rank"`
}
