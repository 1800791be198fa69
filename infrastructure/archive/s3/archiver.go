package s3

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/restaurant-hub/product-bulk/domain/product"
	"github.com/restaurant-hub/product-bulk/infrastructure/config"
)

const contentType = "application/x-ndjson"

type objectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Archiver writes flushed audit batches to S3 as newline delimited JSON,
// one object per batch under <prefix>/YYYY/MM/DD/.
type Archiver struct {
	client objectStore
	bucket string
	prefix string
	now    func() time.Time
}

func NewArchiver(ctx context.Context, cfg config.ArchiveConfig) (*Archiver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	slog.Info("S3 archive enabled", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix, "region", cfg.Region)
	return newArchiver(s3.NewFromConfig(awsCfg), cfg), nil
}

func newArchiver(client objectStore, cfg config.ArchiveConfig) *Archiver {
	return &Archiver{
		client: client,
		bucket: cfg.S3Bucket,
		prefix: cfg.S3Prefix,
		now:    time.Now,
	}
}

func (a *Archiver) Archive(ctx context.Context, records []*product.AuditRecord) error {
	if len(records) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode audit record %s: %w", r.BatchID, err)
		}
	}

	key := a.objectKey(a.now().UTC())
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put archive object %s: %w", key, err)
	}

	slog.Debug("Audit batch archived", "key", key, "count", len(records))
	return nil
}

// List returns the archive object keys written on day.
func (a *Archiver) List(ctx context.Context, day time.Time) ([]string, error) {
	prefix := a.dayPrefix(day.UTC()) + "/"

	var keys []string
	var token *string
	for {
		out, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(a.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list archive objects: %w", err)
		}

		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}

		if !aws.ToBool(out.IsTruncated) {
			return keys, nil
		}
		token = out.NextContinuationToken
	}
}

// Load reads back the records of one archive object.
func (a *Archiver) Load(ctx context.Context, key string) ([]*product.AuditRecord, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get archive object %s: %w", key, err)
	}
	defer out.Body.Close()

	var records []*product.AuditRecord
	scanner := bufio.NewScanner(out.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var r product.AuditRecord
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("failed to decode archive object %s: %w", key, err)
		}
		records = append(records, &r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read archive object %s: %w", key, err)
	}

	return records, nil
}

func (a *Archiver) dayPrefix(t time.Time) string {
	return path.Join(a.prefix, t.Format("2006/01/02"))
}

func (a *Archiver) objectKey(t time.Time) string {
	return path.Join(a.dayPrefix(t), fmt.Sprintf("%s-%s.ndjson", t.Format("150405"), uuid.New().String()))
}
