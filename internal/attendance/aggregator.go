package attendance

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/utils"
)

// AtRiskThreshold is the current leave streak at which a person is listed as at risk.
const AtRiskThreshold = 3

// AllZones is the zone marker that disables zone filtering.
const AllZones = "all"

// Week grid status codes.
const (
	CodePresent   = "P"
	CodeLeave     = "L"
	CodeAbsent    = "A"
	CodeNoMeeting = "-"
)

// Warning kinds.
const (
	WarnInvalidDate   = "invalid_date"
	WarnMissingName   = "missing_name"
	WarnUnknownStatus = "unknown_status"
	WarnDuplicateWeek = "duplicate_week"
	WarnSimilarNames  = "similar_names"
)

// Query bounds an aggregation. Nil bounds are open; an empty Zone or AllZones
// covers every zone.
type Query struct {
	Start *time.Time
	End   *time.Time
	Zone  string
}

func (q Query) allZones() bool {
	z := strings.TrimSpace(q.Zone)
	return z == "" || strings.EqualFold(z, AllZones)
}

func (q Query) includes(zone string, d time.Time) bool {
	if q.Start != nil && d.Before(dateOf(*q.Start)) {
		return false
	}
	if q.End != nil && d.After(dateOf(*q.End)) {
		return false
	}
	return q.allZones() || zone == strings.TrimSpace(q.Zone)
}

type PersonStat struct {
	Name                     string  `json:"name"`
	PersonID                 string  `json:"personId,omitempty"`
	Zone                     string  `json:"zone"`
	Role                     string  `json:"role,omitempty"`
	Total                    int     `json:"total"`
	Present                  int     `json:"present"`
	Leave                    int     `json:"leave"`
	Absent                   int     `json:"absent"`
	CurrentConsecutiveLeaves int     `json:"currentConsecutiveLeaves"`
	MaxConsecutiveLeaves     int     `json:"maxConsecutiveLeaves"`
	LastAttendedDate         string  `json:"lastAttendedDate,omitempty"`
	LastLeaveReason          string  `json:"lastLeaveReason,omitempty"`
	Percentage               float64 `json:"percentage"`
}

type GridAttendee struct {
	Name         string            `json:"name"`
	PersonID     string            `json:"personId,omitempty"`
	Zone         string            `json:"zone"`
	Role         string            `json:"role,omitempty"`
	WeeklyStatus map[string]string `json:"weeklyStatus"`
	PresentCount int               `json:"presentCount"`
	TotalWeeks   int               `json:"totalWeeks"`
	Percentage   float64           `json:"percentage"`
}

type WeekGrid struct {
	Weeks     []string       `json:"weeks"`
	Attendees []GridAttendee `json:"attendees"`
}

// Warning describes input that was skipped or looks suspicious. Warnings never
// abort a report.
type Warning struct {
	Kind      string   `json:"kind"`
	MeetingID string   `json:"meetingId,omitempty"`
	Zone      string   `json:"zone,omitempty"`
	Date      string   `json:"date,omitempty"`
	Names     []string `json:"names,omitempty"`
	Message   string   `json:"message"`
}

type Report struct {
	TotalMeetings     int            `json:"totalMeetings"`
	ZoneMeetingCounts map[string]int `json:"zoneMeetingCounts"`
	PersonStats       []PersonStat   `json:"personStats"`
	AtRiskList        []PersonStat   `json:"atRiskList"`
	WeekGrid          WeekGrid       `json:"weekGrid"`
	Warnings          []Warning      `json:"warnings"`
}

type datedMeeting struct {
	meeting *models.Meeting
	date    time.Time
	week    string
}

type zoneWeek struct {
	zone string
	week string
}

// Aggregate folds meetings into per-person statistics, the at-risk list and the
// week grid. It does no I/O and keeps all state local to the call.
func Aggregate(q Query, meetings []models.Meeting) *Report {
	rep := &Report{
		ZoneMeetingCounts: map[string]int{},
		PersonStats:       []PersonStat{},
		AtRiskList:        []PersonStat{},
		WeekGrid:          WeekGrid{Weeks: []string{}, Attendees: []GridAttendee{}},
		Warnings:          []Warning{},
	}

	dated := make([]*datedMeeting, 0, len(meetings))
	for i := range meetings {
		m := &meetings[i]
		d, err := ParseDate(m.Date)
		if err != nil {
			rep.warn(Warning{Kind: WarnInvalidDate, MeetingID: meetingID(m), Zone: m.ZoneName, Date: m.Date, Message: err.Error()})
			continue
		}
		if !q.includes(m.ZoneName, d) {
			continue
		}
		dated = append(dated, &datedMeeting{meeting: m, date: d, week: WeekKey(d)})
	}
	sort.SliceStable(dated, func(i, j int) bool { return dated[i].date.Before(dated[j].date) })

	stats := map[string]*PersonStat{}
	gridMeeting := map[zoneWeek]*datedMeeting{}
	weeks := map[string]struct{}{}

	for _, dm := range dated {
		m := dm.meeting
		rep.TotalMeetings++
		rep.ZoneMeetingCounts[m.ZoneName]++
		weeks[dm.week] = struct{}{}

		zw := zoneWeek{zone: m.ZoneName, week: dm.week}
		if first, ok := gridMeeting[zw]; ok {
			rep.warn(Warning{
				Kind:      WarnDuplicateWeek,
				MeetingID: meetingID(m),
				Zone:      m.ZoneName,
				Date:      m.Date,
				Message:   fmt.Sprintf("week %s already has the meeting of %s; this one is left out of the week grid", dm.week, first.meeting.Date),
			})
		} else {
			gridMeeting[zw] = dm
		}

		for _, rec := range m.Attendance {
			status, ok := rep.validRecord(m, rec)
			if !ok {
				continue
			}
			key := personKey(rec)
			st, ok := stats[key]
			if !ok {
				st = &PersonStat{PersonID: rec.PersonID}
				stats[key] = st
			}
			st.Name = rec.PersonName
			st.Zone = m.ZoneName
			if rec.Role != "" {
				st.Role = rec.Role
			}
			st.Total++
			switch status {
			case models.StatusPresent:
				st.Present++
				st.CurrentConsecutiveLeaves = 0
				st.LastAttendedDate = FormatDate(dm.date)
			case models.StatusLeave:
				st.Leave++
				st.CurrentConsecutiveLeaves++
				if st.CurrentConsecutiveLeaves > st.MaxConsecutiveLeaves {
					st.MaxConsecutiveLeaves = st.CurrentConsecutiveLeaves
				}
				st.LastLeaveReason = rec.Reason
			case models.StatusAbsent:
				st.Absent++
			}
		}
	}

	for _, st := range stats {
		st.Percentage = Percentage(st.Present, st.Total)
		rep.PersonStats = append(rep.PersonStats, *st)
		if st.CurrentConsecutiveLeaves >= AtRiskThreshold {
			rep.AtRiskList = append(rep.AtRiskList, *st)
		}
	}
	sort.Slice(rep.PersonStats, func(i, j int) bool { return lessPerson(rep.PersonStats[i], rep.PersonStats[j]) })
	sort.Slice(rep.AtRiskList, func(i, j int) bool {
		a, b := rep.AtRiskList[i], rep.AtRiskList[j]
		if a.CurrentConsecutiveLeaves != b.CurrentConsecutiveLeaves {
			return a.CurrentConsecutiveLeaves > b.CurrentConsecutiveLeaves
		}
		return lessPerson(a, b)
	})

	for w := range weeks {
		rep.WeekGrid.Weeks = append(rep.WeekGrid.Weeks, w)
	}
	sort.Strings(rep.WeekGrid.Weeks)
	rep.WeekGrid.Attendees = buildGrid(dated, gridMeeting, rep.WeekGrid.Weeks)

	rep.flagSimilarNames()
	return rep
}

// buildGrid walks the grid meetings in date order so that the latest role seen wins.
func buildGrid(dated []*datedMeeting, gridMeeting map[zoneWeek]*datedMeeting, weeks []string) []GridAttendee {
	rows := map[string]*GridAttendee{}
	for _, dm := range dated {
		m := dm.meeting
		if gridMeeting[zoneWeek{zone: m.ZoneName, week: dm.week}] != dm {
			continue
		}
		for _, rec := range m.Attendance {
			code := statusCode(rec)
			if code == "" {
				continue
			}
			key := m.ZoneName + "\x00" + personKey(rec)
			row, ok := rows[key]
			if !ok {
				row = &GridAttendee{Zone: m.ZoneName, PersonID: rec.PersonID, WeeklyStatus: map[string]string{}}
				rows[key] = row
			}
			row.Name = rec.PersonName
			if rec.Role != "" {
				row.Role = rec.Role
			}
			row.WeeklyStatus[dm.week] = code
		}
	}

	out := make([]GridAttendee, 0, len(rows))
	for _, row := range rows {
		for _, w := range weeks {
			code, ok := row.WeeklyStatus[w]
			if !ok {
				row.WeeklyStatus[w] = CodeNoMeeting
				continue
			}
			row.TotalWeeks++
			if code == CodePresent {
				row.PresentCount++
			}
		}
		row.Percentage = Percentage(row.PresentCount, row.TotalWeeks)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Zone != out[j].Zone {
			return out[i].Zone < out[j].Zone
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].PersonID < out[j].PersonID
	})
	return out
}

// Percentage is present/total*100 rounded to one decimal place, 0 when total is 0.
func Percentage(present, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(present)/float64(total)*1000) / 10
}

// NormalizeStatus maps the accepted spellings of a status to its stored form.
// It returns "" for anything unrecognized.
func NormalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "present", "p":
		return models.StatusPresent
	case "leave", "l", "on leave":
		return models.StatusLeave
	case "absent", "a":
		return models.StatusAbsent
	}
	return ""
}

func statusCode(rec models.AttendanceRecord) string {
	if strings.TrimSpace(rec.PersonName) == "" {
		return ""
	}
	switch NormalizeStatus(rec.Status) {
	case models.StatusPresent:
		return CodePresent
	case models.StatusLeave:
		return CodeLeave
	case models.StatusAbsent:
		return CodeAbsent
	}
	return ""
}

func (r *Report) validRecord(m *models.Meeting, rec models.AttendanceRecord) (string, bool) {
	if strings.TrimSpace(rec.PersonName) == "" {
		r.warn(Warning{Kind: WarnMissingName, MeetingID: meetingID(m), Zone: m.ZoneName, Date: m.Date, Message: "attendance record without a name skipped"})
		return "", false
	}
	status := NormalizeStatus(rec.Status)
	if status == "" {
		r.warn(Warning{
			Kind:      WarnUnknownStatus,
			MeetingID: meetingID(m),
			Zone:      m.ZoneName,
			Date:      m.Date,
			Names:     []string{rec.PersonName},
			Message:   fmt.Sprintf("unknown status %q skipped", rec.Status),
		})
		return "", false
	}
	return status, true
}

// flagSimilarNames reports name-keyed people whose names only differ by case,
// accents or spacing. They are most likely one person entered two ways.
func (r *Report) flagSimilarNames() {
	groups := map[string][]string{}
	for _, st := range r.PersonStats {
		if st.PersonID != "" {
			continue
		}
		folded := utils.FoldName(st.Name)
		groups[folded] = append(groups[folded], st.Name)
	}
	keys := make([]string, 0, len(groups))
	for k, names := range groups {
		if len(names) > 1 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		names := groups[k]
		sort.Strings(names)
		r.warn(Warning{Kind: WarnSimilarNames, Names: names, Message: "names differ only by case, accents or spacing: " + strings.Join(names, ", ")})
	}
}

func (r *Report) warn(w Warning) {
	r.Warnings = append(r.Warnings, w)
}

func personKey(rec models.AttendanceRecord) string {
	if rec.PersonID != "" {
		return "id:" + rec.PersonID
	}
	return "name:" + rec.PersonName
}

func lessPerson(a, b PersonStat) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.PersonID < b.PersonID
}

func meetingID(m *models.Meeting) string {
	if m.ID.IsZero() {
		return ""
	}
	return m.ID.Hex()
}
