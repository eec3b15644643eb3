package models

// WeekMeetings lists the meetings held in one Wednesday–Tuesday week.
type WeekMeetings struct {
	WeekStart string     `json:"weekStart"`
	WeekEnd   string     `json:"weekEnd"`
	Meetings  []*Meeting `json:"meetings"`
}

// PendingZonesResponse lists zones with no meeting recorded in a week.
type PendingZonesResponse struct {
	WeekStart    string   `json:"weekStart"`
	WeekEnd      string   `json:"weekEnd"`
	PendingZones []string `json:"pendingZones"`
	MetZones     []string `json:"metZones"`
}

// PersonSuggestion is a fuzzy name match for attendance entry.
type PersonSuggestion struct {
	Name     string `json:"name"`
	PersonID string `json:"personId,omitempty"`
	Zone     string `json:"zone,omitempty"`
	Score    int    `json:"score"`
}

// SyncResult summarizes one legacy spreadsheet import.
type SyncResult struct {
	RowsRead        int `json:"rowsRead"`
	RowsSkipped     int `json:"rowsSkipped"`
	MeetingsUpdated int `json:"meetingsUpdated"`
	MeetingsKept    int `json:"meetingsKept"` // already recorded in the app
}
