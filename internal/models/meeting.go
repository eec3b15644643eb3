package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attendance statuses as stored on a record.
const (
	StatusPresent = "present"
	StatusLeave   = "leave"
	StatusAbsent  = "absent"
)

// Meeting sources.
const (
	SourceApp    = "app"
	SourceSheets = "sheets"
)

// Meeting is one zone meeting. Date is a calendar date string (YYYY-MM-DD) with
// no time zone; legacy imports may carry malformed values.
type Meeting struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ZoneName   string             `json:"zoneName" bson:"zone"`
	Date       string             `json:"date" bson:"date"`
	AgendaID   string             `json:"agendaId,omitempty" bson:"agendaId,omitempty"`
	Notes      string             `json:"notes,omitempty" bson:"notes,omitempty"`
	Attendance []AttendanceRecord `json:"attendance" bson:"attendance"`
	Source     string             `json:"source" bson:"source"`
	CreatedBy  string             `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// AttendanceRecord is one person's status at a meeting. PersonName is the
// join key across meetings unless PersonID is set.
type AttendanceRecord struct {
	PersonName string `json:"name" bson:"name"`
	PersonID   string `json:"personId,omitempty" bson:"personId,omitempty"`
	Role       string `json:"role,omitempty" bson:"role,omitempty"`
	Status     string `json:"status" bson:"status"`
	Reason     string `json:"reason,omitempty" bson:"reason,omitempty"`
}

type MeetingRequest struct {
	ZoneName   string             `json:"zoneName" binding:"required"`
	Date       string             `json:"date" binding:"required"`
	AgendaID   string             `json:"agendaId"`
	Notes      string             `json:"notes"`
	Attendance []AttendanceRecord `json:"attendance" binding:"dive"`
}

// Agenda is the plan for a zone meeting.
type Agenda struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ZoneName  string             `json:"zoneName" bson:"zone"`
	Date      string             `json:"date" bson:"date"`
	Title     string             `json:"title" bson:"title"`
	Items     []string           `json:"items" bson:"items"`
	CreatedBy string             `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type AgendaRequest struct {
	ZoneName string   `json:"zoneName" binding:"required"`
	Date     string   `json:"date" binding:"required"`
	Title    string   `json:"title" binding:"required"`
	Items    []string `json:"items"`
}
