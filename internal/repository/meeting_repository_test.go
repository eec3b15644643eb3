package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMeetingFilterBSON(t *testing.T) {
	tests := []struct {
		name   string
		filter MeetingFilter
		want   bson.M
	}{
		{"open", MeetingFilter{}, bson.M{}},
		{"start only", MeetingFilter{Start: "2024-01-01"}, bson.M{"date": bson.M{"$gte": "2024-01-01"}}},
		{
			"range and zones",
			MeetingFilter{Start: "2024-01-01", End: "2024-01-31", Zones: []string{"Z1"}},
			bson.M{
				"date": bson.M{"$gte": "2024-01-01", "$lt": "2024-02-01"},
				"zone": bson.M{"$in": []string{"Z1"}},
			},
		},
		{"end only", MeetingFilter{End: "2024-12-31"}, bson.M{"date": bson.M{"$lt": "2025-01-01"}}},
		{"unparsable end", MeetingFilter{End: "soon"}, bson.M{"date": bson.M{"$lte": "soon"}}},
		{
			"keep malformed dates",
			MeetingFilter{Start: "2024-01-10", End: "2024-01-16", KeepMalformedDates: true},
			bson.M{"$or": bson.A{
				bson.M{"date": bson.M{"$gte": "2024-01-10", "$lt": "2024-01-17"}},
				bson.M{"date": bson.M{"$not": primitive.Regex{Pattern: `^\d{4}-\d{2}-\d{2}`}}},
			}},
		},
		{"keep malformed without range", MeetingFilter{KeepMalformedDates: true}, bson.M{}},
		{"no visible zones", MeetingFilter{Zones: []string{}}, bson.M{"zone": bson.M{"$in": []string{}}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.bson())
		})
	}
}

func TestEndBoundIncludesTimestampsOnLastDay(t *testing.T) {
	op, bound := endBound("2024-01-16")
	assert.Equal(t, "$lt", op)
	assert.Less(t, "2024-01-16T09:00:00Z", bound)
	assert.Less(t, "2024-01-16", bound)
	assert.GreaterOrEqual(t, "2024-01-17", bound)
}

func TestObjectID(t *testing.T) {
	_, err := objectID("not-hex")
	assert.ErrorIs(t, err, ErrInvalidID)

	oid, err := objectID("65a0f0f0f0f0f0f0f0f0f0f0")
	assert.NoError(t, err)
	assert.Equal(t, "65a0f0f0f0f0f0f0f0f0f0f0", oid.Hex())
}

func TestWriteErrPassesThrough(t *testing.T) {
	assert.NoError(t, writeErr(nil))
	assert.Equal(t, ErrInvalidID, writeErr(ErrInvalidID))
}
