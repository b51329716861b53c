package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bolsas/internal/model"
)

// ApplicationRepo handles MongoDB operations for applications (inscrições)
type ApplicationRepo interface {
	Create(ctx context.Context, app *model.Application) (string, error)
	GetByID(ctx context.Context, id string) (*model.Application, error)
	ListByStatus(ctx context.Context, status model.ApplicationStatus) ([]*model.Application, error)
	// ListByUser returns the user's applications, all of them when status is empty
	ListByUser(ctx context.Context, userID string, status model.ApplicationStatus) ([]*model.Application, error)
	ListByAnnouncement(ctx context.Context, announcementID string, statuses ...model.ApplicationStatus) ([]*model.Application, error)
	Update(ctx context.Context, app *model.Application) error
	SetStatus(ctx context.Context, ids []string, status model.ApplicationStatus) error
	Delete(ctx context.Context, id string) error
}

type applicationRepo struct {
	collection *mongo.Collection
}

// NewApplicationRepo creates a new application repository
func NewApplicationRepo(db *mongo.Database) ApplicationRepo {
	return &applicationRepo{
		collection: db.Collection("inscricoes"),
	}
}

func (r *applicationRepo) Create(ctx context.Context, app *model.Application) (string, error) {
	now := time.Now()
	if app.SubmittedAt.IsZero() {
		app.SubmittedAt = now
	}
	app.CreatedAt = now
	app.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, app)
	if err != nil {
		return "", err
	}
	app.ID = insertedHex(result)
	return app.ID, nil
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}

	var app model.Application
	err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&app)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	app.ID = id
	return &app, nil
}

func (r *applicationRepo) ListByStatus(ctx context.Context, status model.ApplicationStatus) ([]*model.Application, error) {
	return r.find(ctx, bson.M{"status": status})
}

func (r *applicationRepo) ListByUser(ctx context.Context, userID string, status model.ApplicationStatus) ([]*model.Application, error) {
	filter := bson.M{"userId": userID}
	if status != "" {
		filter["status"] = status
	}
	return r.find(ctx, filter)
}

func (r *applicationRepo) ListByAnnouncement(ctx context.Context, announcementID string, statuses ...model.ApplicationStatus) ([]*model.Application, error) {
	filter := bson.M{"announcementId": announcementID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	return r.find(ctx, filter)
}

func (r *applicationRepo) find(ctx context.Context, filter bson.M) ([]*model.Application, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	apps := []*model.Application{}
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *applicationRepo) Update(ctx context.Context, app *model.Application) error {
	oid, ok := objectID(app.ID)
	if !ok {
		return mongo.ErrNoDocuments
	}

	app.UpdatedAt = time.Now()
	doc := *app
	doc.ID = ""
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": oid}, &doc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *applicationRepo) SetStatus(ctx context.Context, ids []string, status model.ApplicationStatus) error {
	if len(ids) == 0 {
		return nil
	}
	oids := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		if oid, ok := objectID(id); ok {
			oids = append(oids, oid)
		}
	}

	_, err := r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": oids}},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	return err
}

func (r *applicationRepo) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return mongo.ErrNoDocuments
	}
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
