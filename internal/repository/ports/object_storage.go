package ports

import (
	"context"
	"time"
)

type ObjectStorage interface {
	PresignedURL(ctx context.Context, bucket, objectName string, expiry time.Duration) (string, error)
}
