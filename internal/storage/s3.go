// internal/storage/s3.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/viralforge/campaign-launcher/internal/config"
	appErrors "github.com/viralforge/campaign-launcher/internal/errors"
)

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	URL          string    `json:"url"`
}

// ObjectStore is what the orchestrator depends on; S3Store is the
// production implementation, tests substitute their own.
type ObjectStore interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
	Download(ctx context.Context, key, localPath string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)
	URLFor(key string) string
}

// S3Store talks to any S3-compatible endpoint (MinIO in development).
// Every fault is wrapped in StorageError; callers fall back to "no URL"
// rather than crash.
type S3Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	endpoint  string
	bucket    string
}

func NewS3Store(ctx context.Context, settings config.Settings) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(settings.S3Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(settings.S3AccessKey, settings.S3SecretKey, ""),
		),
	)
	if err != nil {
		return nil, appErrors.NewStorageError("configure", "", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(settings.S3Endpoint)
		o.UsePathStyle = true
	})

	store := &S3Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		endpoint:  settings.S3Endpoint,
		bucket:    settings.S3Bucket,
	}

	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// ensureBucket creates the bucket if it is missing. A creation race
// (already exists / already owned) is tolerated, not an error.
func (s *S3Store) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return nil
		}
		return appErrors.NewStorageError("create-bucket", s.bucket, err)
	}
	log.Println("✅ Created bucket:", s.bucket)
	return nil
}

func (s *S3Store) Upload(ctx context.Context, localPath, key string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", appErrors.NewStorageError("upload", key, err)
	}
	defer f.Close()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return "", appErrors.NewStorageError("upload", key, err)
	}
	return s.URLFor(key), nil
}

func (s *S3Store) Download(ctx context.Context, key, localPath string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return appErrors.NewStorageError("download", key, err)
	}
	defer out.Body.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return appErrors.NewStorageError("download", key, err)
	}
	defer f.Close()

	if _, err := f.ReadFrom(out.Body); err != nil {
		return appErrors.NewStorageError("download", key, err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return appErrors.NewStorageError("delete", key, err)
	}
	return nil
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, appErrors.NewStorageError("list", prefix, err)
	}

	infos := make([]ObjectInfo, 0, len(out.Contents))
	for _, obj := range out.Contents {
		infos = append(infos, ObjectInfo{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			URL:          s.URLFor(aws.ToString(obj.Key)),
		})
	}
	return infos, nil
}

func (s *S3Store) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", appErrors.NewStorageError("presign", key, err)
	}
	return req.URL, nil
}

func (s *S3Store) URLFor(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
}

var _ ObjectStore = (*S3Store)(nil)
