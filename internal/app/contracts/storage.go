package contracts

import (
	"context"
	"io"
	"qlinme-service/internal/app/models"
)

// ObjectStorage is the bucket-scoped view of the object store. Missing keys
// surface as exceptions.ErrStorageObjectNotFound.
type ObjectStorage interface {
	List(ctx context.Context, prefix string, maxKeys int) ([]models.ObjectInfo, error)
	Stat(ctx context.Context, key string) (*models.ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Copy(ctx context.Context, srcKey, dstKey string) error
	Delete(ctx context.Context, key string) error
}

// BatchStorage knows where a batch keeps its metadata, backups and files.
type BatchStorage interface {
	GetMetadata(ctx context.Context, batchID string) (*models.Metadata, error)
	BackupAndSaveMetadata(ctx context.Context, batchID string, metadata *models.Metadata) error
	ListMetadataVersions(ctx context.Context, batchID string) ([]models.MetadataVersion, error)
	GetMetadataVersion(ctx context.Context, batchID, version string) (*models.Metadata, error)
	ListBatchFiles(ctx context.Context, batchID string) ([]string, error)
}
