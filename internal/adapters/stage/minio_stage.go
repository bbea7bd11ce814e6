// Package stage mirrors generated batches into an S3-compatible object
// store, one gzipped NDJSON object per batch. The warehouse stays the system
// of record; staged objects exist for replay and for downstream pipelines
// that prefer files over SQL.
package stage

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sfc-gh-aneel/streaming-demo/internal/domain"
	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

type Minio struct {
	client *minio.Client
	bucket string
	prefix string
	now    func() time.Time
}

func NewMinio(endpoint, accessKey, secretKey string, useSSL bool, bucket, prefix string) (*Minio, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create stage client: %w", err)
	}
	return &Minio{client: client, bucket: bucket, prefix: prefix, now: time.Now}, nil
}

func (m *Minio) Name() string { return "minio" }

func (m *Minio) Close(ctx context.Context) error { return nil }

// EnsureBucket creates the configured bucket if it does not exist yet.
func (m *Minio) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check stage bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create stage bucket: %w", err)
	}
	return nil
}

func (m *Minio) WriteSensorReadings(ctx context.Context, batch []domain.SensorReading) error {
	return putBatch(ctx, m, "sensor_data", batch)
}

func (m *Minio) WriteProductionEvents(ctx context.Context, batch []domain.ProductionEvent) error {
	return putBatch(ctx, m, "production_data", batch)
}

func (m *Minio) WriteQualityResults(ctx context.Context, batch []domain.QualityTestResult) error {
	return putBatch(ctx, m, "quality_data", batch)
}

func putBatch[T any](ctx context.Context, m *Minio, category string, batch []T) error {
	if len(batch) == 0 {
		return nil
	}

	body, err := encodeNDJSON(batch)
	if err != nil {
		return fmt.Errorf("encode %s batch: %w", category, err)
	}

	key := objectKey(m.prefix, category, m.now(), uuid.New())
	_, err = m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/gzip",
	})
	if err != nil {
		return fmt.Errorf("stage put %s: %w", key, err)
	}
	return nil
}

// encodeNDJSON gzips one JSON document per line, the layout warehouse COPY
// loaders and the original stage pipes expect.
func encodeNDJSON[T any](batch []T) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	enc := json.NewEncoder(zw)
	for _, rec := range batch {
		if err := enc.Encode(rec); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// objectKey buckets objects by category directory; the timestamp keeps
// listings chronological and the uuid keeps two batches from the same second
// apart.
func objectKey(prefix, category string, ts time.Time, id uuid.UUID) string {
	return fmt.Sprintf("%s/%s/%s_%s_%s.json.gz", prefix, category, category, ts.UTC().Format("20060102_150405"), id)
}

var _ ports.RecordWriter = (*Minio)(nil)
