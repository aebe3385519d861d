package blob

import (
	"bytes"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStore keeps blobs in a GridFS bucket on the same Mongo
// deployment as the shared store. Keys map to GridFS filenames.
type GridFSStore struct {
	bucket *gridfs.Bucket
	files  *mongo.Collection
}

func NewGridFSStore(db *mongo.Database, bucketName string) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, err
	}
	return &GridFSStore{
		bucket: bucket,
		files:  db.Collection(bucketName + ".files"),
	}, nil
}

func (g *GridFSStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if dl, ok := ctx.Deadline(); ok {
		_ = g.bucket.SetWriteDeadline(dl)
	}
	meta := options.GridFSUpload().SetMetadata(bson.M{
		"content_type": contentType,
		"deleted":      false,
	})
	_, err := g.bucket.UploadFromStream(key, bytes.NewReader(data), meta)
	return err
}

func (g *GridFSStore) Get(ctx context.Context, key string) ([]byte, error) {
	if dl, ok := ctx.Deadline(); ok {
		_ = g.bucket.SetReadDeadline(dl)
	}
	var buf bytes.Buffer
	_, err := g.bucket.DownloadToStreamByName(key, &buf)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *GridFSStore) List(ctx context.Context, prefix string) ([]Info, error) {
	cur, err := g.files.Find(ctx,
		bson.M{"filename": bson.M{"$regex": "^" + prefix}},
		options.Find().SetSort(bson.D{{Key: "filename", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Info
	for cur.Next(ctx) {
		var doc struct {
			Filename   string    `bson:"filename"`
			Length     int64     `bson:"length"`
			UploadDate time.Time `bson:"uploadDate"`
			Metadata   struct {
				Deleted bool `bson:"deleted"`
			} `bson:"metadata"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, Info{
			Key:       doc.Filename,
			Size:      doc.Length,
			CreatedAt: doc.UploadDate,
			Deleted:   doc.Metadata.Deleted,
		})
	}
	return out, cur.Err()
}

func (g *GridFSStore) Tag(ctx context.Context, key string) error {
	res, err := g.files.UpdateOne(ctx,
		bson.M{"filename": key},
		bson.M{"$set": bson.M{"metadata.deleted": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GridFSStore) Delete(ctx context.Context, key string) error {
	var doc struct {
		ID any `bson:"_id"`
	}
	err := g.files.FindOne(ctx, bson.M{"filename": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return g.bucket.Delete(doc.ID)
}
