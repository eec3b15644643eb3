package repository

import (
	"testing"
	"time"

	"meetingtracker-be/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestZoneRenamesCoverEveryReference(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	renames := zoneRenames("Z1", "Zone One", now)
	require.Len(t, renames, 4)

	byColl := map[string]zoneRename{}
	for _, rn := range renames {
		byColl[rn.coll] = rn
	}

	assert.Equal(t, bson.M{"zone": "Z1"}, byColl[database.CollMeetings].filter)
	assert.Equal(t, bson.M{"$set": bson.M{"zone": "Zone One", "updatedAt": now}}, byColl[database.CollMeetings].update)

	assert.Equal(t, bson.M{"zone": "Z1"}, byColl[database.CollAgendas].filter)
	assert.Equal(t, bson.M{"$set": bson.M{"zone": "Zone One", "updatedAt": now}}, byColl[database.CollAgendas].update)

	assert.Equal(t, bson.M{"zoneName": "Z1"}, byColl[database.CollUnits].filter)
	assert.Equal(t, bson.M{"$set": bson.M{"zoneName": "Zone One", "updatedAt": now}}, byColl[database.CollUnits].update)

	// only the matched element of the zone list changes
	assert.Equal(t, bson.M{"zones": "Z1"}, byColl[database.CollUsers].filter)
	assert.Equal(t, bson.M{"$set": bson.M{"zones.$": "Zone One", "updatedAt": now}}, byColl[database.CollUsers].update)
}
