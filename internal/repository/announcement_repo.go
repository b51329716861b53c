package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bolsas/internal/model"
)

// AnnouncementRepo handles MongoDB operations for announcements (editais)
type AnnouncementRepo interface {
	Create(ctx context.Context, a *model.Announcement) (string, error)
	GetByID(ctx context.Context, id string) (*model.Announcement, error)
	List(ctx context.Context) ([]*model.AnnouncementSummary, error)
	ListOpen(ctx context.Context, now time.Time) ([]*model.Announcement, error)
	ListClosed(ctx context.Context, now time.Time) ([]*model.Announcement, error)
	Update(ctx context.Context, a *model.Announcement) error
	Delete(ctx context.Context, id string) error
	// MarkFinalized flips finalized to true; false means it already was (or the id is unknown)
	MarkFinalized(ctx context.Context, id string) (bool, error)
}

type announcementRepo struct {
	collection *mongo.Collection
}

// NewAnnouncementRepo creates a new announcement repository
func NewAnnouncementRepo(db *mongo.Database) AnnouncementRepo {
	return &announcementRepo{
		collection: db.Collection("editais"),
	}
}

func (r *announcementRepo) Create(ctx context.Context, a *model.Announcement) (string, error) {
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt

	result, err := r.collection.InsertOne(ctx, a)
	if err != nil {
		return "", err
	}
	a.ID = insertedHex(result)
	return a.ID, nil
}

func (r *announcementRepo) GetByID(ctx context.Context, id string) (*model.Announcement, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}

	var a model.Announcement
	err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.ID = id
	return &a, nil
}

func (r *announcementRepo) List(ctx context.Context) ([]*model.AnnouncementSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{"name": 1, "description": 1, "academicPeriod": 1, "createdAt": 1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	summaries := []*model.AnnouncementSummary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *announcementRepo) ListOpen(ctx context.Context, now time.Time) ([]*model.Announcement, error) {
	return r.find(ctx, bson.M{
		"enrollmentStart": bson.M{"$lte": now},
		"enrollmentEnd":   bson.M{"$gte": now},
	})
}

func (r *announcementRepo) ListClosed(ctx context.Context, now time.Time) ([]*model.Announcement, error) {
	return r.find(ctx, bson.M{
		"enrollmentEnd": bson.M{"$lt": now},
		"finalized":     bson.M{"$ne": true},
	})
}

func (r *announcementRepo) find(ctx context.Context, filter bson.M) ([]*model.Announcement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "enrollmentEnd", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	announcements := []*model.Announcement{}
	if err := cursor.All(ctx, &announcements); err != nil {
		return nil, err
	}
	return announcements, nil
}

func (r *announcementRepo) Update(ctx context.Context, a *model.Announcement) error {
	oid, ok := objectID(a.ID)
	if !ok {
		return mongo.ErrNoDocuments
	}

	a.UpdatedAt = time.Now()
	doc := *a
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

func (r *announcementRepo) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return mongo.ErrNoDocuments
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *announcementRepo) MarkFinalized(ctx context.Context, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "finalized": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"finalized": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}
