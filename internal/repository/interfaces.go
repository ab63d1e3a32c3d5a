package repository

import (
	"context"
	"time"

	"catalog-proxy-api/internal/model"
)

// CallLogRepository defines upstream call-log data access methods.
type CallLogRepository interface {
	Insert(ctx context.Context, entry *model.CallLog) error
	List(ctx context.Context, limit, offset int) ([]model.CallLog, int64, error)
	DeleteOlderThan(ctx context.Context, threshold time.Duration) (int64, error)
	Stats(ctx context.Context) (map[string]interface{}, error)
	Close() error
}
