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

type CommitteeRepository struct {
	committees *mongo.Collection
	roles      *mongo.Collection
}

func NewCommitteeRepository(db *mongo.Database) *CommitteeRepository {
	return &CommitteeRepository{
		committees: db.Collection(database.CollCommittees),
		roles:      db.Collection(database.CollCommitteeRoles),
	}
}

func (r *CommitteeRepository) Create(ctx context.Context, c *models.Committee) error {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	if c.Members == nil {
		c.Members = []models.CommitteeMember{}
	}
	_, err := r.committees.InsertOne(ctx, c)
	return writeErr(err)
}

func (r *CommitteeRepository) List(ctx context.Context) ([]*models.Committee, error) {
	cursor, err := r.committees.Find(ctx, bson.M{}, byName)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []*models.Committee{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CommitteeRepository) Get(ctx context.Context, id string) (*models.Committee, error) {
	var c models.Committee
	if err := findByID(ctx, r.committees, id, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommitteeRepository) Update(ctx context.Context, id string, req models.CommitteeRequest) (*models.Committee, error) {
	members := req.Members
	if members == nil {
		members = []models.CommitteeMember{}
	}
	set := bson.M{"name": req.Name, "description": req.Description, "members": members}
	var c models.Committee
	if err := updateAndReturn(ctx, r.committees, id, set, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a committee together with its roles.
func (r *CommitteeRepository) Delete(ctx context.Context, id string) error {
	if err := deleteByID(ctx, r.committees, id); err != nil {
		return err
	}
	_, err := r.roles.DeleteMany(ctx, bson.M{"committeeId": id})
	return err
}

func (r *CommitteeRepository) CreateRole(ctx context.Context, role *models.CommitteeRole) error {
	role.ID = primitive.NewObjectID()
	role.CreatedAt = time.Now()
	_, err := r.roles.InsertOne(ctx, role)
	return writeErr(err)
}

func (r *CommitteeRepository) ListRoles(ctx context.Context, committeeID string) ([]*models.CommitteeRole, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rank", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.roles.Find(ctx, bson.M{"committeeId": committeeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []*models.CommitteeRole{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CommitteeRepository) DeleteRole(ctx context.Context, id string) error {
	return deleteByID(ctx, r.roles, id)
}
