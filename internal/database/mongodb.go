package database

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	CollUsers          = "users"
	CollDistricts      = "districts"
	CollZones          = "zones"
	CollUnits          = "units"
	CollCommittees     = "committees"
	CollCommitteeRoles = "committee_roles"
	CollAgendas        = "agendas"
	CollMeetings       = "meetings"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(uri, dbName string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info().Str("database", dbName).Msg("connected to MongoDB")

	return &MongoDB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (m *MongoDB) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

// Ping is used by the health endpoint.
func (m *MongoDB) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, nil)
}

type indexSpec struct {
	collection string
	name       string
	keys       bson.D
	unique     bool
}

// Natural keys are unique; the rest speed up the dashboard range queries.
var indexes = []indexSpec{
	{CollUsers, "uniq_email", bson.D{{Key: "email", Value: 1}}, true},
	{CollUsers, "uniq_person_id", bson.D{{Key: "personId", Value: 1}}, true},
	{CollDistricts, "uniq_name", bson.D{{Key: "name", Value: 1}}, true},
	{CollZones, "uniq_name", bson.D{{Key: "name", Value: 1}}, true},
	{CollZones, "idx_district", bson.D{{Key: "districtId", Value: 1}}, false},
	{CollUnits, "uniq_zone_name", bson.D{{Key: "zoneId", Value: 1}, {Key: "name", Value: 1}}, true},
	{CollCommittees, "uniq_name", bson.D{{Key: "name", Value: 1}}, true},
	{CollCommitteeRoles, "uniq_committee_name", bson.D{{Key: "committeeId", Value: 1}, {Key: "name", Value: 1}}, true},
	{CollAgendas, "idx_zone_date", bson.D{{Key: "zone", Value: 1}, {Key: "date", Value: 1}}, false},
	{CollMeetings, "uniq_zone_date", bson.D{{Key: "zone", Value: 1}, {Key: "date", Value: 1}}, true},
	{CollMeetings, "idx_date", bson.D{{Key: "date", Value: 1}}, false},
}

// EnsureIndexes creates the indexes every repository relies on.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	for _, idx := range indexes {
		opts := options.Index().SetName(idx.name)
		if idx.unique {
			opts.SetUnique(true)
		}
		_, err := m.Database.Collection(idx.collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    idx.keys,
			Options: opts,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
