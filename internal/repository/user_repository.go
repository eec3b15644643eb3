package repository

import (
	"context"
	"time"

	"meetingtracker-be/internal/database"
	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection(database.CollUsers),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.PersonID == "" {
		user.PersonID = utils.NewPersonID()
	}

	_, err := r.collection.InsertOne(ctx, user)
	return writeErr(err)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns users, optionally restricted to those assigned to one of zones.
func (r *UserRepository) List(ctx context.Context, zones []string) ([]*models.User, error) {
	filter := bson.M{}
	if zones != nil {
		filter["zones"] = bson.M{"$in": zones}
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []*models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"name":      user.Name,
			"phone":     user.Phone,
			"role":      user.Role,
			"zones":     user.Zones,
			"unitId":    user.UnitID,
			"active":    user.Active,
			"updatedAt": user.UpdatedAt,
		},
	}

	return matchedOrNotFound(r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update))
}

func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID, refreshToken string) error {
	oid, err := objectID(userID)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"refreshToken": refreshToken,
			"updatedAt":    time.Now(),
		},
	}

	return matchedOrNotFound(r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update))
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	oid, err := objectID(userID)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"password":     passwordHash,
			"refreshToken": "",
			"updatedAt":    time.Now(),
		},
	}

	return matchedOrNotFound(r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update))
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	return deletedOrNotFound(r.collection.DeleteOne(ctx, bson.M{"_id": oid}))
}
