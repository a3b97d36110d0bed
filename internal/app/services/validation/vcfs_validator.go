package validation

import (
	"context"
	"fmt"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/app/models"
	"qlinme-service/internal/app/services/shared/metrics"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/utils"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultVCFWorkers = 4

type vcfsValidator struct {
	Extractor contracts.VCFAliquotExtractor
	Workers   int
	Log       *zap.Logger
	Metrics   *metrics.Metrics
}

func NewVCFsValidator(extractor contracts.VCFAliquotExtractor, workers int, logger *zap.Logger, m *metrics.Metrics) contracts.VCFsValidator {
	if workers <= 0 {
		workers = defaultVCFWorkers
	}
	return &vcfsValidator{
		Extractor: extractor,
		Workers:   workers,
		Log:       logger,
		Metrics:   m,
	}
}

func (v *vcfsValidator) Validate(ctx context.Context, metadata *models.Metadata, batchID string, files []string, allowCache bool) (*models.VCFsValidation, error) {
	requestID := utils.GetRequestID(ctx)
	report := &models.VCFsValidation{BatchID: batchID}

	var declared []string
	if metadata != nil {
		report.Schema = metadata.SubmissionSchema
		for _, analysis := range metadata.Analyses {
			if !utils.IsBlank(analysis.LabAliquotID) {
				declared = append(declared, analysis.LabAliquotID)
			}
		}
	}

	vcfs := make([]string, 0)
	for _, file := range files {
		if isVCF(report.Schema, file) {
			vcfs = append(vcfs, file)
		}
	}
	report.VCFsCount = len(vcfs)

	filesByAliquotID, err := v.extractAll(ctx, batchID, vcfs, allowCache)
	if err != nil {
		v.Log.Error("vcfsValidator.Validate extraction failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBatchIDKey, batchID),
			zap.Error(err),
		)
		return nil, err
	}

	for _, aliquotID := range declared {
		if _, ok := filesByAliquotID[aliquotID]; !ok {
			report.AddError(aliquotID, constvars.MsgAliquotMissingVCF)
		}
	}

	aliquotIDs := make([]string, 0, len(filesByAliquotID))
	for aliquotID := range filesByAliquotID {
		aliquotIDs = append(aliquotIDs, aliquotID)
	}
	sort.Strings(aliquotIDs)
	for _, aliquotID := range aliquotIDs {
		vcfFiles := utils.FormatList(filesByAliquotID[aliquotID])
		if !utils.Contains(declared, aliquotID) {
			report.AddWarning(aliquotID, fmt.Sprintf(constvars.MsgAliquotNotInMetadata, vcfFiles))
		}
		if len(filesByAliquotID[aliquotID]) > 1 {
			report.AddWarning(aliquotID, fmt.Sprintf(constvars.MsgAliquotWithSeveralVCFs, vcfFiles))
		}
	}

	v.Log.Info("vcfsValidator.Validate completed",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBatchIDKey, batchID),
		zap.Bool(constvars.LoggingAllowCacheKey, allowCache),
		zap.Int(constvars.LoggingVCFsCountKey, report.VCFsCount),
		zap.Int(constvars.LoggingErrorsCountKey, report.Errors.Len()),
		zap.Int(constvars.LoggingWarningsCountKey, report.Warnings.Len()),
		zap.Bool(constvars.LoggingIsValidKey, report.IsValid()),
	)
	v.Metrics.ObserveValidation("vcfs", report.IsValid())
	return report, nil
}

// extractAll reads the variant files concurrently. Files keep their listing
// order inside each aliquot entry.
func (v *vcfsValidator) extractAll(ctx context.Context, batchID string, vcfs []string, allowCache bool) (map[string][]string, error) {
	results := make([][]string, len(vcfs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.Workers)
	for i, file := range vcfs {
		i, file := i, file
		g.Go(func() error {
			aliquotIDs, err := v.Extractor.ExtractAliquotIDs(gctx, batchID+constvars.StoragePathSeparator+file, allowCache)
			if err != nil {
				return err
			}
			results[i] = aliquotIDs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	filesByAliquotID := make(map[string][]string)
	for i, file := range vcfs {
		for _, aliquotID := range results[i] {
			filesByAliquotID[aliquotID] = append(filesByAliquotID[aliquotID], file)
		}
	}
	return filesByAliquotID, nil
}
