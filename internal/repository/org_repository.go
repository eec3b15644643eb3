package repository

import (
	"context"
	"fmt"
	"time"

	"meetingtracker-be/internal/database"
	"meetingtracker-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrgRepository stores the district, zone and unit hierarchy.
type OrgRepository struct {
	districts *mongo.Collection
	zones     *mongo.Collection
	units     *mongo.Collection
	db        *mongo.Database
}

func NewOrgRepository(db *mongo.Database) *OrgRepository {
	return &OrgRepository{
		districts: db.Collection(database.CollDistricts),
		zones:     db.Collection(database.CollZones),
		units:     db.Collection(database.CollUnits),
		db:        db,
	}
}

var byName = options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

// updateAndReturn applies $set to one document and decodes the result into out.
func updateAndReturn(ctx context.Context, coll *mongo.Collection, id string, set bson.M, out interface{}) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	set["updatedAt"] = time.Now()
	after := options.After
	opts := options.FindOneAndUpdateOptions{ReturnDocument: &after}
	err = coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, &opts).Decode(out)
	return writeErr(err)
}

func findByID(ctx context.Context, coll *mongo.Collection, id string, out interface{}) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	return coll.FindOne(ctx, bson.M{"_id": oid}).Decode(out)
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	return deletedOrNotFound(coll.DeleteOne(ctx, bson.M{"_id": oid}))
}

// ===== Districts =====

func (r *OrgRepository) CreateDistrict(ctx context.Context, d *models.District) error {
	d.ID = primitive.NewObjectID()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	_, err := r.districts.InsertOne(ctx, d)
	return writeErr(err)
}

func (r *OrgRepository) ListDistricts(ctx context.Context) ([]*models.District, error) {
	cursor, err := r.districts.Find(ctx, bson.M{}, byName)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []*models.District{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrgRepository) GetDistrict(ctx context.Context, id string) (*models.District, error) {
	var d models.District
	if err := findByID(ctx, r.districts, id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *OrgRepository) UpdateDistrict(ctx context.Context, id string, req models.DistrictRequest) (*models.District, error) {
	var d models.District
	if err := updateAndReturn(ctx, r.districts, id, bson.M{"name": req.Name}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *OrgRepository) DeleteDistrict(ctx context.Context, id string) error {
	return deleteByID(ctx, r.districts, id)
}

// ===== Zones =====

func (r *OrgRepository) CreateZone(ctx context.Context, z *models.Zone) error {
	z.ID = primitive.NewObjectID()
	z.CreatedAt = time.Now()
	z.UpdatedAt = z.CreatedAt
	_, err := r.zones.InsertOne(ctx, z)
	return writeErr(err)
}

// ListZones returns zones, restricted to names when names is not nil.
func (r *OrgRepository) ListZones(ctx context.Context, names []string) ([]*models.Zone, error) {
	filter := bson.M{}
	if names != nil {
		filter["name"] = bson.M{"$in": names}
	}
	cursor, err := r.zones.Find(ctx, filter, byName)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []*models.Zone{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrgRepository) GetZone(ctx context.Context, id string) (*models.Zone, error) {
	var z models.Zone
	if err := findByID(ctx, r.zones, id, &z); err != nil {
		return nil, err
	}
	return &z, nil
}

func (r *OrgRepository) UpdateZone(ctx context.Context, id string, req models.ZoneRequest) (*models.Zone, error) {
	set := bson.M{
		"name":        req.Name,
		"districtId":  req.DistrictID,
		"meetingDay":  req.MeetingDay,
		"description": req.Description,
	}
	var z models.Zone
	if err := updateAndReturn(ctx, r.zones, id, set, &z); err != nil {
		return nil, err
	}
	return &z, nil
}

type zoneRename struct {
	coll   string
	filter bson.M
	update bson.M
}

// zoneRenames lists the updates that move every reference to a zone name:
// meetings, agendas, units and users' zone lists.
func zoneRenames(oldName, newName string, now time.Time) []zoneRename {
	return []zoneRename{
		{database.CollMeetings, bson.M{"zone": oldName}, bson.M{"$set": bson.M{"zone": newName, "updatedAt": now}}},
		{database.CollAgendas, bson.M{"zone": oldName}, bson.M{"$set": bson.M{"zone": newName, "updatedAt": now}}},
		{database.CollUnits, bson.M{"zoneName": oldName}, bson.M{"$set": bson.M{"zoneName": newName, "updatedAt": now}}},
		// zone lists hold each name once, so the positional update covers it
		{database.CollUsers, bson.M{"zones": oldName}, bson.M{"$set": bson.M{"zones.$": newName, "updatedAt": now}}},
	}
}

// RenameZone carries a zone rename into every document that refers to the zone
// by name. Meetings and agendas keep their history under the new name.
func (r *OrgRepository) RenameZone(ctx context.Context, oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	for _, rn := range zoneRenames(oldName, newName, time.Now()) {
		if _, err := r.db.Collection(rn.coll).UpdateMany(ctx, rn.filter, rn.update); err != nil {
			return fmt.Errorf("rename zone in %s: %w", rn.coll, writeErr(err))
		}
	}
	return nil
}

func (r *OrgRepository) DeleteZone(ctx context.Context, id string) error {
	return deleteByID(ctx, r.zones, id)
}

// ===== Units =====

func (r *OrgRepository) CreateUnit(ctx context.Context, u *models.Unit) error {
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	_, err := r.units.InsertOne(ctx, u)
	return writeErr(err)
}

// ListUnits returns units, restricted to zone names when zones is not nil.
func (r *OrgRepository) ListUnits(ctx context.Context, zones []string) ([]*models.Unit, error) {
	filter := bson.M{}
	if zones != nil {
		filter["zoneName"] = bson.M{"$in": zones}
	}
	cursor, err := r.units.Find(ctx, filter, byName)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []*models.Unit{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrgRepository) GetUnit(ctx context.Context, id string) (*models.Unit, error) {
	var u models.Unit
	if err := findByID(ctx, r.units, id, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *OrgRepository) UpdateUnit(ctx context.Context, id string, name string, zone *models.Zone) (*models.Unit, error) {
	set := bson.M{"name": name, "zoneId": zone.ID.Hex(), "zoneName": zone.Name}
	var u models.Unit
	if err := updateAndReturn(ctx, r.units, id, set, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *OrgRepository) DeleteUnit(ctx context.Context, id string) error {
	return deleteByID(ctx, r.units, id)
}
