package contracts

import (
	"context"
	"qlinme-service/internal/app/models"
)

type MetadataValidator interface {
	Validate(metadata *models.Metadata, batchID string, reference *models.ReferenceData) *models.MetadataValidation
}

type FilesValidator interface {
	Validate(metadata *models.Metadata, batchID string, files []string) *models.FilesValidation
}

type VCFsValidator interface {
	Validate(ctx context.Context, metadata *models.Metadata, batchID string, files []string, allowCache bool) (*models.VCFsValidation, error)
}

// VCFAliquotExtractor reads the sample ids of a variant file header.
type VCFAliquotExtractor interface {
	ExtractAliquotIDs(ctx context.Context, key string, allowCache bool) ([]string, error)
}
