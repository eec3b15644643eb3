package repository

import (
	"context"
	"time"

	"meetingtracker-be/internal/database"
	"meetingtracker-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MeetingFilter selects meetings (or agendas) by date range and zone. Dates are
// YYYY-MM-DD strings, so lexical comparison is date order. Empty bounds are
// open; a nil Zones slice means every zone, an empty one means none.
//
// Legacy imports may store timestamps ("2024-01-16T09:00:00Z") or other
// spellings. End is applied as "before the next day" so timestamps on the last
// day match. With KeepMalformedDates, meetings whose date does not start with a
// calendar date are returned regardless of range, for callers that report them.
type MeetingFilter struct {
	Start              string
	End                string
	Zones              []string
	KeepMalformedDates bool
}

const dateLayout = "2006-01-02"

// calendarDatePrefix matches dates the range comparison can order.
const calendarDatePrefix = `^\d{4}-\d{2}-\d{2}`

// endBound returns the operator and value for an inclusive end date.
func endBound(end string) (string, string) {
	d, err := time.Parse(dateLayout, end)
	if err != nil {
		return "$lte", end
	}
	return "$lt", d.AddDate(0, 0, 1).Format(dateLayout)
}

func (f MeetingFilter) bson() bson.M {
	filter := bson.M{}
	dateRange := bson.M{}
	if f.Start != "" {
		dateRange["$gte"] = f.Start
	}
	if f.End != "" {
		op, value := endBound(f.End)
		dateRange[op] = value
	}
	if len(dateRange) > 0 {
		if f.KeepMalformedDates {
			filter["$or"] = bson.A{
				bson.M{"date": dateRange},
				bson.M{"date": bson.M{"$not": primitive.Regex{Pattern: calendarDatePrefix}}},
			}
		} else {
			filter["date"] = dateRange
		}
	}
	if f.Zones != nil {
		filter["zone"] = bson.M{"$in": f.Zones}
	}
	return filter
}

type MeetingRepository struct {
	collection *mongo.Collection
}

func NewMeetingRepository(db *mongo.Database) *MeetingRepository {
	return &MeetingRepository{collection: db.Collection(database.CollMeetings)}
}

func (r *MeetingRepository) Create(ctx context.Context, m *models.Meeting) error {
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	if m.Attendance == nil {
		m.Attendance = []models.AttendanceRecord{}
	}
	_, err := r.collection.InsertOne(ctx, m)
	return writeErr(err)
}

func (r *MeetingRepository) Get(ctx context.Context, id string) (*models.Meeting, error) {
	var m models.Meeting
	if err := findByID(ctx, r.collection, id, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Find returns matching meetings in ascending date order.
func (r *MeetingRepository) Find(ctx context.Context, f MeetingFilter) ([]models.Meeting, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "zone", Value: 1}})
	cursor, err := r.collection.Find(ctx, f.bson(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []models.Meeting{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MeetingRepository) Update(ctx context.Context, m *models.Meeting) error {
	m.UpdatedAt = time.Now()
	if m.Attendance == nil {
		m.Attendance = []models.AttendanceRecord{}
	}
	update := bson.M{
		"$set": bson.M{
			"zone":       m.ZoneName,
			"date":       m.Date,
			"agendaId":   m.AgendaID,
			"notes":      m.Notes,
			"attendance": m.Attendance,
			"source":     m.Source,
			"updatedAt":  m.UpdatedAt,
		},
	}
	return matchedOrNotFound(r.collection.UpdateOne(ctx, bson.M{"_id": m.ID}, update))
}

func (r *MeetingRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.collection, id)
}

// UpsertByZoneDate writes an imported meeting keyed by its zone and date,
// replacing the attendance of an earlier import. A meeting recorded in the app
// for the same zone and date is left alone and ErrDuplicate is returned.
// It reports whether a new document was created.
func (r *MeetingRepository) UpsertByZoneDate(ctx context.Context, m *models.Meeting) (bool, error) {
	now := time.Now()
	filter := bson.M{"zone": m.ZoneName, "date": m.Date, "source": bson.M{"$ne": models.SourceApp}}
	update := bson.M{
		"$set": bson.M{
			"attendance": m.Attendance,
			"source":     m.Source,
			"updatedAt":  now,
		},
		"$setOnInsert": bson.M{
			"createdAt": now,
		},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, writeErr(err)
	}
	return res.UpsertedCount > 0, nil
}

// People lists the distinct attendees recorded in matching meetings, most
// recent zone first.
func (r *MeetingRepository) People(ctx context.Context, f MeetingFilter) ([]models.PersonSuggestion, error) {
	pipeline := []bson.M{
		{"$match": f.bson()},
		{"$sort": bson.M{"date": -1}},
		{"$unwind": "$attendance"},
		{"$match": bson.M{"attendance.name": bson.M{"$nin": []interface{}{"", nil}}}},
		{"$group": bson.M{
			"_id": bson.M{
				"name":     "$attendance.name",
				"personId": "$attendance.personId",
			},
			"zone": bson.M{"$first": "$zone"},
		}},
		{"$project": bson.M{
			"name":     "$_id.name",
			"personId": "$_id.personId",
			"zone":     1,
			"_id":      0,
		}},
		{"$sort": bson.M{"name": 1}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.PersonSuggestion
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
