package batch

import (
	"context"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/app/models"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/utils"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type batchUsecase struct {
	BatchStorage      contracts.BatchStorage
	ReferenceData     contracts.ReferenceDataService
	MetadataValidator contracts.MetadataValidator
	FilesValidator    contracts.FilesValidator
	VCFsValidator     contracts.VCFsValidator
	Locker            contracts.LockerService
	Publisher         contracts.BatchEventPublisher
	LockTTL           time.Duration
	Log               *zap.Logger
	now               func() time.Time
}

var (
	batchUsecaseInstance contracts.BatchUsecase
	onceBatchUsecase     sync.Once
)

type Dependencies struct {
	BatchStorage      contracts.BatchStorage
	ReferenceData     contracts.ReferenceDataService
	MetadataValidator contracts.MetadataValidator
	FilesValidator    contracts.FilesValidator
	VCFsValidator     contracts.VCFsValidator
	Locker            contracts.LockerService
	Publisher         contracts.BatchEventPublisher
}

func NewBatchUsecase(deps Dependencies, lockTTL time.Duration, logger *zap.Logger) contracts.BatchUsecase {
	onceBatchUsecase.Do(func() {
		batchUsecaseInstance = newBatchUsecase(deps, lockTTL, logger)
	})
	return batchUsecaseInstance
}

func newBatchUsecase(deps Dependencies, lockTTL time.Duration, logger *zap.Logger) *batchUsecase {
	return &batchUsecase{
		BatchStorage:      deps.BatchStorage,
		ReferenceData:     deps.ReferenceData,
		MetadataValidator: deps.MetadataValidator,
		FilesValidator:    deps.FilesValidator,
		VCFsValidator:     deps.VCFsValidator,
		Locker:            deps.Locker,
		Publisher:         deps.Publisher,
		LockTTL:           lockTTL,
		Log:               logger,
		now:               time.Now,
	}
}

func (uc *batchUsecase) GetBatch(ctx context.Context, batchID string) (*models.Metadata, error) {
	uc.Log.Info("batchUsecase.GetBatch called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingBatchIDKey, batchID),
	)
	return uc.BatchStorage.GetMetadata(ctx, batchID)
}

// CreateOrUpdateBatch stores metadata only when it validates. A rejected
// document comes back as a report with a nil error.
func (uc *batchUsecase) CreateOrUpdateBatch(ctx context.Context, batchID string, metadata *models.Metadata, allowCache bool) (*models.Metadata, *models.MetadataValidation, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("batchUsecase.CreateOrUpdateBatch called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBatchIDKey, batchID),
		zap.Bool(constvars.LoggingAllowCacheKey, allowCache),
	)

	reference, err := uc.ReferenceData.Load(ctx, allowCache)
	if err != nil {
		uc.Log.Error("batchUsecase.CreateOrUpdateBatch error loading reference data",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, nil, err
	}

	report := uc.MetadataValidator.Validate(metadata, batchID, reference)
	if !report.IsValid() {
		uc.Log.Info("batchUsecase.CreateOrUpdateBatch rejected metadata",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBatchIDKey, batchID),
			zap.Int("error_fields", report.Errors.Len()),
		)
		return nil, report, nil
	}

	release, err := uc.Locker.LockBatch(ctx, batchID, uc.LockTTL)
	if err != nil {
		return nil, report, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			uc.Log.Warn("batchUsecase.CreateOrUpdateBatch error releasing lock",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingBatchIDKey, batchID),
				zap.Error(err),
			)
		}
	}()

	err = utils.LogOperation(uc.Log, "batchStorage.BackupAndSaveMetadata", requestID, func() error {
		return uc.BatchStorage.BackupAndSaveMetadata(ctx, batchID, metadata)
	})
	if err != nil {
		return nil, report, err
	}

	event := &models.BatchEvent{
		Event:      constvars.EventBatchMetadataSaved,
		BatchID:    batchID,
		Schema:     metadata.SubmissionSchema,
		Analyses:   len(metadata.Analyses),
		OccurredAt: uc.now().UTC(),
	}
	// the document is stored, a lost event must not fail the request
	if err := uc.Publisher.Publish(ctx, event); err != nil {
		uc.Log.Error("batchUsecase.CreateOrUpdateBatch error publishing event",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBatchIDKey, batchID),
			zap.Error(err),
		)
	}

	uc.Log.Info("batchUsecase.CreateOrUpdateBatch succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBatchIDKey, batchID),
	)
	return metadata, report, nil
}

func (uc *batchUsecase) GetBatchStatus(ctx context.Context, batchID string, allowCache bool) (*models.BatchStatus, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("batchUsecase.GetBatchStatus called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBatchIDKey, batchID),
		zap.Bool(constvars.LoggingAllowCacheKey, allowCache),
	)

	metadata, err := uc.BatchStorage.GetMetadata(ctx, batchID)
	if err != nil {
		return nil, err
	}

	var (
		reference *models.ReferenceData
		files     []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		reference, err = uc.ReferenceData.Load(gctx, allowCache)
		return err
	})
	g.Go(func() (err error) {
		files, err = uc.BatchStorage.ListBatchFiles(gctx, batchID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	status := &models.BatchStatus{
		Metadata: uc.MetadataValidator.Validate(metadata, batchID, reference),
		Files:    uc.FilesValidator.Validate(metadata, batchID, files),
	}
	status.VCFs, err = uc.VCFsValidator.Validate(ctx, metadata, batchID, files, allowCache)
	if err != nil {
		return nil, err
	}

	status.Status = constvars.BatchStatusErrors
	if status.Metadata.IsValid() && status.Files.IsValid() && status.VCFs.IsValid() {
		status.Status = constvars.BatchStatusReadyToImport
	}

	uc.Log.Info("batchUsecase.GetBatchStatus succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBatchIDKey, batchID),
		zap.String("status", status.Status),
	)
	return status, nil
}

func (uc *batchUsecase) ListBatchHistory(ctx context.Context, batchID string) ([]models.MetadataVersion, error) {
	uc.Log.Info("batchUsecase.ListBatchHistory called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingBatchIDKey, batchID),
	)
	return uc.BatchStorage.ListMetadataVersions(ctx, batchID)
}

func (uc *batchUsecase) GetBatchHistoryVersion(ctx context.Context, batchID, version string) (*models.Metadata, error) {
	uc.Log.Info("batchUsecase.GetBatchHistoryVersion called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingBatchIDKey, batchID),
		zap.String(constvars.LoggingVersionKey, version),
	)
	return uc.BatchStorage.GetMetadataVersion(ctx, batchID, version)
}
