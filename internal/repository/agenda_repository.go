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

type AgendaRepository struct {
	collection *mongo.Collection
}

func NewAgendaRepository(db *mongo.Database) *AgendaRepository {
	return &AgendaRepository{collection: db.Collection(database.CollAgendas)}
}

func (r *AgendaRepository) Create(ctx context.Context, a *models.Agenda) error {
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	_, err := r.collection.InsertOne(ctx, a)
	return writeErr(err)
}

// List returns agendas newest first, using the same range/zone filter as meetings.
func (r *AgendaRepository) List(ctx context.Context, f MeetingFilter) ([]*models.Agenda, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.collection.Find(ctx, f.bson(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []*models.Agenda{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AgendaRepository) Get(ctx context.Context, id string) (*models.Agenda, error) {
	var a models.Agenda
	if err := findByID(ctx, r.collection, id, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AgendaRepository) Update(ctx context.Context, id string, req models.AgendaRequest) (*models.Agenda, error) {
	set := bson.M{"zone": req.ZoneName, "date": req.Date, "title": req.Title, "items": req.Items}
	var a models.Agenda
	if err := updateAndReturn(ctx, r.collection, id, set, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AgendaRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.collection, id)
}
