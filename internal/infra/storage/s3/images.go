package s3

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"roomfinder/internal/app/policies"
)

const (
	tokenPrefix  = "room_picture_"
	objectPrefix = "room_pictures"
)

// ImageResolver checks an S3-compatible bucket for room_pictures/<room_no>.jpg.
type ImageResolver struct {
	bucket string
	client *minio.Client
	logger *slog.Logger
}

func NewImageResolver(endpoint string, useSSL bool, accessKey, secretKey, bucket string, logger *slog.Logger) (*ImageResolver, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	if bucket = strings.TrimSpace(bucket); bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	client, err := minio.New(parseEndpoint(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(accessKey), strings.TrimSpace(secretKey), ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ImageResolver{bucket: bucket, client: client, logger: logger}, nil
}

// ObjectKey is where the picture of roomNo is expected.
func ObjectKey(roomNo string) string {
	return path.Join(objectPrefix, roomNo+".jpg")
}

// ImageToken returns an empty token when the object is missing or the lookup
// fails; a broken bucket must not break availability answers.
func (r *ImageResolver) ImageToken(ctx context.Context, roomNo string) string {
	roomNo = strings.TrimSpace(roomNo)
	if roomNo == "" || strings.Contains(roomNo, "/") {
		return ""
	}
	_, err := r.client.StatObject(ctx, r.bucket, ObjectKey(roomNo), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code != "NoSuchKey" {
			r.logger.WarnContext(ctx, "s3 picture lookup failed", "bucket", r.bucket, "room_no", roomNo, "error", err)
		}
		return ""
	}
	return tokenPrefix + roomNo
}

// Ping checks that the bucket is reachable.
func (r *ImageResolver) Ping(ctx context.Context) error {
	ok, err := r.client.BucketExists(ctx, r.bucket)
	if err != nil {
		return fmt.Errorf("s3: check bucket: %w", err)
	}
	if !ok {
		return fmt.Errorf("s3: bucket %s does not exist", r.bucket)
	}
	return nil
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var _ policies.ImageResolver = (*ImageResolver)(nil)
