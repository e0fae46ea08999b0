package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFS MongoDB GridFS存储，路径为文件的ObjectID
type GridFS struct {
	bucket *gridfs.Bucket
	now    func() time.Time
}

// ConnectMongo 连接MongoDB
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("连接MongoDB失败: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB连接测试失败: %w", err)
	}
	return client, nil
}

// NewGridFS 在数据库上创建GridFS存储，使用 uploads 桶
func NewGridFS(db *mongo.Database) (*GridFS, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("uploads"))
	if err != nil {
		return nil, err
	}
	return &GridFS{bucket: bucket, now: time.Now}, nil
}

func (g *GridFS) Disk() string { return "gridfs" }

// Put 上传文件
func (g *GridFS) Put(_ context.Context, name string, r io.Reader, contentType string) (string, error) {
	opts := options.GridFSUpload().SetMetadata(bson.D{
		{Key: "contentType", Value: contentType},
		{Key: "originalName", Value: name},
	})
	id, err := g.bucket.UploadFromStream(ObjectName(name, g.now()), r, opts)
	if err != nil {
		return "", fmt.Errorf("上传到GridFS失败: %w", err)
	}
	return id.Hex(), nil
}

// Open 打开文件
func (g *GridFS) Open(_ context.Context, p string) (io.ReadCloser, error) {
	id, err := primitive.ObjectIDFromHex(p)
	if err != nil {
		return nil, ErrInvalidPath
	}
	stream, err := g.bucket.OpenDownloadStream(id)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// Delete 删除文件，文件不存在不是错误
func (g *GridFS) Delete(ctx context.Context, p string) error {
	id, err := primitive.ObjectIDFromHex(p)
	if err != nil {
		return ErrInvalidPath
	}
	if err := g.bucket.DeleteContext(ctx, id); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return err
	}
	return nil
}
