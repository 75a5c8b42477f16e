package s3

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var ErrNoSuchKey = errors.New("no such key")

// Config locates the bucket.  It maps one-to-one onto the stores.s3 block of
// the config file.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type Conn struct {
	client *minio.Client
	bucket string
}

func NewConn(config Config) (*Conn, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})

	if err != nil {
		return nil, err
	}

	return &Conn{client: client, bucket: config.Bucket}, nil
}

// EnsureBucket creates the bucket on first start.
func (conn *Conn) EnsureBucket(ctx context.Context) error {
	exists, err := conn.client.BucketExists(ctx, conn.bucket)

	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	log.Info("creating bucket", "bucket", conn.bucket)

	return conn.client.MakeBucket(ctx, conn.bucket, minio.MakeBucketOptions{})
}

func (conn *Conn) Get(ctx context.Context, objectKey string) ([]byte, error) {
	object, err := conn.client.GetObject(ctx, conn.bucket, objectKey, minio.GetObjectOptions{})

	if err != nil {
		return nil, translate(err)
	}

	defer object.Close()

	data, err := io.ReadAll(object)

	if err != nil {
		return nil, translate(err)
	}

	return data, nil
}

func (conn *Conn) Put(ctx context.Context, objectKey string, body []byte) error {
	_, err := conn.client.PutObject(
		ctx, conn.bucket, objectKey, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)

	return err
}

func (conn *Conn) Delete(ctx context.Context, objectKey string) error {
	return translate(conn.client.RemoveObject(ctx, conn.bucket, objectKey, minio.RemoveObjectOptions{}))
}

func translate(err error) error {
	if err == nil {
		return nil
	}

	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrNoSuchKey
	}

	return err
}
