package contracts

import (
	"context"
	"qlinme-service/internal/app/models"
)

// BatchUsecase returns a non-nil report together with a nil error when the
// submitted metadata is rejected.
type BatchUsecase interface {
	GetBatch(ctx context.Context, batchID string) (*models.Metadata, error)
	CreateOrUpdateBatch(ctx context.Context, batchID string, metadata *models.Metadata, allowCache bool) (*models.Metadata, *models.MetadataValidation, error)
	GetBatchStatus(ctx context.Context, batchID string, allowCache bool) (*models.BatchStatus, error)
	ListBatchHistory(ctx context.Context, batchID string) ([]models.MetadataVersion, error)
	GetBatchHistoryVersion(ctx context.Context, batchID, version string) (*models.Metadata, error)
}
