// Package backup uploads a JSON snapshot of the log to S3-compatible object
// storage through a presigned PUT URL.
package backup

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/wlog/internal/codec"
	"github.com/dmitrijs2005/wlog/internal/models"
	"github.com/dmitrijs2005/wlog/internal/netx"
	"github.com/google/uuid"
)

const presignExpiry = 15 * time.Minute

// Settings locate the bucket. BaseEndpoint is addressed path-style, which is
// what MinIO and most S3 clones expect.
type Settings struct {
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// seams for tests
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

type Uploader struct {
	settings Settings
	http     *http.Client
	now      models.Clock
}

func NewUploader(s Settings, hc *http.Client, now models.Clock) *Uploader {
	if now == nil {
		now = models.SystemClock
	}
	return &Uploader{settings: s, http: hc, now: now}
}

// StorageKey is the object key of a snapshot taken at t.
func StorageKey(t time.Time) string {
	return fmt.Sprintf("wlog/%04d/%02d/%02d/%v.json", t.Year(), t.Month(), t.Day(), uuid.New())
}

func (u *Uploader) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(u.settings.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.settings.AccessKey,
			u.settings.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if u.settings.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(u.settings.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return s3.NewPresignClient(client), nil
}

// PresignPut returns a fresh object key and a URL that accepts one PUT of it.
func (u *Uploader) PresignPut(ctx context.Context) (string, string, error) {
	presignClient, err := u.presignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := u.settings.Bucket
	key := StorageKey(u.now())

	req, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// Upload stores es as one JSON array and returns its object key.
func (u *Uploader) Upload(ctx context.Context, es []models.Entry) (string, error) {
	key, url, err := u.PresignPut(ctx)
	if err != nil {
		return "", fmt.Errorf("presign backup: %w", err)
	}

	if err := netx.Upload(ctx, u.http, url, "application/json", codec.EncodeEntries(es)); err != nil {
		return "", fmt.Errorf("backup %s: %w", key, err)
	}

	return key, nil
}
