package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"bolsas/internal/model"
)

// UserRepo handles MongoDB operations for users
type UserRepo interface {
	Create(ctx context.Context, u *model.User) (string, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByCPF(ctx context.Context, cpf string) (*model.User, error)
	// FindConflict returns any user sharing the cpf, email or enrollment number
	FindConflict(ctx context.Context, cpf, email, enrollment string) (*model.User, error)
	UpdateContact(ctx context.Context, id, email, phone string, address model.Address) error
	UpdatePassword(ctx context.Context, id, hash string, temporary bool) error
}

type userRepo struct {
	collection *mongo.Collection
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *mongo.Database) UserRepo {
	return &userRepo{
		collection: db.Collection("usuarios"),
	}
}

func (r *userRepo) Create(ctx context.Context, u *model.User) (string, error) {
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt

	result, err := r.collection.InsertOne(ctx, u)
	if err != nil {
		return "", err
	}
	u.ID = insertedHex(result)
	return u.ID, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *userRepo) GetByCPF(ctx context.Context, cpf string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"cpf": cpf})
}

func (r *userRepo) FindConflict(ctx context.Context, cpf, email, enrollment string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"cpf": cpf},
		bson.M{"email": email},
		bson.M{"enrollmentNumber": enrollment},
	}})
}

func (r *userRepo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var u model.User
	err := r.collection.FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) UpdateContact(ctx context.Context, id, email, phone string, address model.Address) error {
	oid, ok := objectID(id)
	if !ok {
		return mongo.ErrNoDocuments
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"email":     email,
		"phone":     phone,
		"address":   address,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id, hash string, temporary bool) error {
	oid, ok := objectID(id)
	if !ok {
		return mongo.ErrNoDocuments
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"passwordHash":      hash,
		"temporaryPassword": temporary,
		"updatedAt":         time.Now(),
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
