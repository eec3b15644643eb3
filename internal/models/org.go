package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// District is the top of the organization hierarchy.
type District struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Zone belongs to a district. Meetings reference zones by name.
type Zone struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	DistrictID  string             `json:"districtId" bson:"districtId"`
	MeetingDay  string             `json:"meetingDay,omitempty" bson:"meetingDay,omitempty"` // e.g. "Wednesday"
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Unit is the smallest group, inside a zone.
type Unit struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	ZoneID    string             `json:"zoneId" bson:"zoneId"`
	ZoneName  string             `json:"zoneName" bson:"zoneName"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type DistrictRequest struct {
	Name string `json:"name" binding:"required"`
}

type ZoneRequest struct {
	Name        string `json:"name" binding:"required"`
	DistrictID  string `json:"districtId" binding:"required"`
	MeetingDay  string `json:"meetingDay"`
	Description string `json:"description"`
}

type UnitRequest struct {
	Name   string `json:"name" binding:"required"`
	ZoneID string `json:"zoneId" binding:"required"`
}
