package repository

import (
	"context"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const uploadsBucket = "uploads"

// FileInfo describes a stored blob
type FileInfo struct {
	ID          string
	Name        string
	Length      int64
	ContentType string
	UploadedAt  time.Time
}

// FileStore keeps uploaded document blobs in GridFS
type FileStore interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	// Open returns (nil, nil, nil) when the file does not exist
	Open(ctx context.Context, id string) (io.ReadCloser, *FileInfo, error)
	Delete(ctx context.Context, id string) error
}

type gridFSStore struct {
	db *mongo.Database
}

// NewFileStore creates a GridFS-backed file store
func NewFileStore(db *mongo.Database) FileStore {
	return &gridFSStore{db: db}
}

// bucket opens a bucket carrying ctx's deadline; buckets are cheap and not
// safe to share once a deadline is set.
func (s *gridFSStore) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(uploadsBucket))
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := b.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
		if err := b.SetWriteDeadline(deadline); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (s *gridFSStore) Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	b, err := s.bucket(ctx)
	if err != nil {
		return "", err
	}
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	id, err := b.UploadFromStream(name, r, opts)
	if err != nil {
		return "", err
	}
	return id.Hex(), nil
}

func (s *gridFSStore) Open(ctx context.Context, id string) (io.ReadCloser, *FileInfo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil, nil
	}
	b, err := s.bucket(ctx)
	if err != nil {
		return nil, nil, err
	}

	stream, err := b.OpenDownloadStream(oid)
	if err == gridfs.ErrFileNotFound {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	f := stream.GetFile()
	info := &FileInfo{
		ID:         id,
		Name:       f.Name,
		Length:     f.Length,
		UploadedAt: f.UploadDate,
	}
	if f.Metadata != nil {
		if ct, ok := f.Metadata.Lookup("contentType").StringValueOK(); ok {
			info.ContentType = ct
		}
	}
	return stream, info, nil
}

func (s *gridFSStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return gridfs.ErrFileNotFound
	}
	b, err := s.bucket(ctx)
	if err != nil {
		return err
	}
	return b.Delete(oid)
}
