package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bolsas/internal/model"
)

// DocumentRepo stores document metadata; blobs live in the FileStore
type DocumentRepo interface {
	Create(ctx context.Context, doc *model.Document) (string, error)
	GetByID(ctx context.Context, id string) (*model.Document, error)
	// ListByUser returns the user's documents, all of them when status is empty
	ListByUser(ctx context.Context, userID string, status model.DocumentStatus) ([]*model.Document, error)
	ListByStatus(ctx context.Context, status model.DocumentStatus) ([]*model.Document, error)
	SetReview(ctx context.Context, id string, status model.DocumentStatus, review model.DocumentReview) error
}

type documentRepo struct {
	collection *mongo.Collection
}

// NewDocumentRepo creates a new document repository
func NewDocumentRepo(db *mongo.Database) DocumentRepo {
	return &documentRepo{
		collection: db.Collection("documentos"),
	}
}

func (r *documentRepo) Create(ctx context.Context, doc *model.Document) (string, error) {
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	doc.ID = insertedHex(result)
	return doc.ID, nil
}

func (r *documentRepo) GetByID(ctx context.Context, id string) (*model.Document, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}

	var doc model.Document
	err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	doc.ID = id
	return &doc, nil
}

func (r *documentRepo) ListByUser(ctx context.Context, userID string, status model.DocumentStatus) ([]*model.Document, error) {
	filter := bson.M{"userId": userID}
	if status != "" {
		filter["status"] = status
	}
	return r.find(ctx, filter)
}

func (r *documentRepo) ListByStatus(ctx context.Context, status model.DocumentStatus) ([]*model.Document, error) {
	return r.find(ctx, bson.M{"status": status})
}

func (r *documentRepo) find(ctx context.Context, filter bson.M) ([]*model.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []*model.Document{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepo) SetReview(ctx context.Context, id string, status model.DocumentStatus, review model.DocumentReview) error {
	oid, ok := objectID(id)
	if !ok {
		return mongo.ErrNoDocuments
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"status": status,
		"review": review,
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
