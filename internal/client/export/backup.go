package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/DikaaDK/Chronos-sub000/internal/journal"
	"github.com/DikaaDK/Chronos-sub000/internal/logging"
)

var (
	ErrBackupDisabled = errors.New("backup bucket is not configured")
	ErrNoUserID       = errors.New("backup requires a signed in user")
)

// ObjectPutter is the part of the S3 client a backup needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) ObjectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
	newObjectID = uuid.NewString
)

// S3Config locates the backup bucket. An empty Endpoint uses the AWS default.
type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

type Backuper struct {
	cfg    S3Config
	logger logging.Logger
}

func NewBackuper(cfg S3Config, l logging.Logger) *Backuper {
	return &Backuper{cfg: cfg, logger: l.With("module", "backup")}
}

// ObjectKey returns the object key of a backup taken at now.
func ObjectKey(userID string, now time.Time, id string) string {
	now = now.UTC()
	return fmt.Sprintf("journals/%s/%04d/%02d/%02d/%s.json", userID, now.Year(), now.Month(), now.Day(), id)
}

func (b *Backuper) client(ctx context.Context) (ObjectPutter, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(b.cfg.Region)}
	if b.cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(b.cfg.AccessKey, b.cfg.SecretKey, ""),
		))
	}
	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if b.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(b.cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Backup uploads the JSON export of entries and returns the object key.
func (b *Backuper) Backup(ctx context.Context, userID string, entries []journal.Entry, now time.Time, locale string) (string, error) {
	if b.cfg.Bucket == "" {
		return "", ErrBackupDisabled
	}
	if userID == "" {
		return "", ErrNoUserID
	}

	var buf bytes.Buffer
	if err := ToJSON(&buf, entries, now, locale); err != nil {
		return "", err
	}

	c, err := b.client(ctx)
	if err != nil {
		return "", err
	}

	key := ObjectKey(userID, now, newObjectID())
	_, err = c.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(int64(buf.Len())),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload backup: %w", err)
	}

	b.logger.Info(ctx, "backup uploaded", "bucket", b.cfg.Bucket, "key", key, "count", len(entries))
	return key, nil
}
