package storage

import (
	"context"
	"io"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/app/models"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/exceptions"
	"qlinme-service/internal/pkg/utils"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Layout of a batch inside the bucket:
//
//	<batch>/metadata.json                   current document
//	<batch>/<files>                         sequencing files
//	.backup/<batch>/metadata.json.<n>       previous documents, n from 1
//	.backup/<batch>/metadata.json.latest    copy of the current document
type batchStore struct {
	Storage contracts.ObjectStorage
	Log     *zap.Logger
}

func NewBatchStore(objectStorage contracts.ObjectStorage, logger *zap.Logger) contracts.BatchStorage {
	return &batchStore{
		Storage: objectStorage,
		Log:     logger,
	}
}

func metadataKey(batchID string) string {
	return batchID + constvars.StoragePathSeparator + constvars.StorageMetadataFile
}

func backupFolder(batchID string) string {
	return constvars.StorageBackupPrefix + batchID + constvars.StoragePathSeparator
}

func backupKey(batchID, version string) string {
	return backupFolder(batchID) + constvars.StorageMetadataFile + "." + version
}

func (s *batchStore) GetMetadata(ctx context.Context, batchID string) (*models.Metadata, error) {
	requestID := utils.GetRequestID(ctx)
	s.Log.Info("batchStore.GetMetadata called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBatchIDKey, batchID),
	)

	metadata, err := s.readMetadata(ctx, batchID, metadataKey(batchID))
	if exceptions.IsNotFound(err) {
		return nil, exceptions.ErrBatchNotFound(err, batchID)
	}
	return metadata, err
}

func (s *batchStore) GetMetadataVersion(ctx context.Context, batchID, version string) (*models.Metadata, error) {
	requestID := utils.GetRequestID(ctx)
	s.Log.Info("batchStore.GetMetadataVersion called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBatchIDKey, batchID),
		zap.String(constvars.LoggingVersionKey, version),
	)

	metadata, err := s.readMetadata(ctx, batchID, backupKey(batchID, version))
	if exceptions.IsNotFound(err) {
		return nil, exceptions.ErrMetadataVersionNotFound(err, batchID, version)
	}
	return metadata, err
}

func (s *batchStore) readMetadata(ctx context.Context, batchID, key string) (*models.Metadata, error) {
	body, err := s.Storage.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	content, err := io.ReadAll(body)
	if err != nil {
		return nil, exceptions.ErrStorageGetObject(err, key)
	}

	var metadata models.Metadata
	if err := json.Unmarshal(content, &metadata); err != nil {
		s.Log.Error("batchStore.readMetadata error decoding metadata",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingObjectKey, key),
			zap.Error(err),
		)
		return nil, exceptions.ErrMetadataMalformed(err, batchID)
	}
	return &metadata, nil
}

func (s *batchStore) BackupAndSaveMetadata(ctx context.Context, batchID string, metadata *models.Metadata) error {
	requestID := utils.GetRequestID(ctx)
	s.Log.Info("batchStore.BackupAndSaveMetadata called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBatchIDKey, batchID),
	)

	content, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	if err := s.backupMetadata(ctx, batchID); err != nil {
		return err
	}

	key := metadataKey(batchID)
	if err := s.Storage.Put(ctx, key, content, constvars.MIMEApplicationJSON); err != nil {
		return err
	}
	if err := s.Storage.Copy(ctx, key, backupKey(batchID, constvars.StorageBackupLatest)); err != nil {
		return err
	}

	s.Log.Info("batchStore.BackupAndSaveMetadata succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBatchIDKey, batchID),
	)
	return nil
}

// backupMetadata copies the current document to the next numbered backup.
func (s *batchStore) backupMetadata(ctx context.Context, batchID string) error {
	key := metadataKey(batchID)
	_, err := s.Storage.Stat(ctx, key)
	if exceptions.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	backups, err := s.Storage.List(ctx, backupFolder(batchID), constvars.StorageMaxKeys)
	if err != nil {
		return err
	}
	previous := 0
	for _, backup := range backups {
		if !strings.HasSuffix(backup.Key, constvars.StorageBackupLatest) {
			previous++
		}
	}

	return s.Storage.Copy(ctx, key, backupKey(batchID, strconv.Itoa(previous+1)))
}

// ListMetadataVersions includes the "latest" copy, its version is "latest".
func (s *batchStore) ListMetadataVersions(ctx context.Context, batchID string) ([]models.MetadataVersion, error) {
	requestID := utils.GetRequestID(ctx)
	s.Log.Info("batchStore.ListMetadataVersions called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBatchIDKey, batchID),
	)

	backups, err := s.Storage.List(ctx, backupFolder(batchID), constvars.StorageMaxKeys)
	if err != nil {
		return nil, err
	}

	versions := make([]models.MetadataVersion, 0, len(backups))
	for _, backup := range backups {
		versions = append(versions, models.MetadataVersion{
			Version:      extractVersion(backup.Key),
			LastModified: backup.LastModified,
		})
	}
	return versions, nil
}

func (s *batchStore) ListBatchFiles(ctx context.Context, batchID string) ([]string, error) {
	requestID := utils.GetRequestID(ctx)
	prefix := batchID + constvars.StoragePathSeparator

	objects, err := s.Storage.List(ctx, prefix, constvars.StorageMaxKeys)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(objects))
	for _, object := range objects {
		file := strings.Replace(object.Key, prefix, "", 1)
		if isBatchFile(file) {
			files = append(files, file)
		}
	}

	s.Log.Info("batchStore.ListBatchFiles succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBatchIDKey, batchID),
		zap.Int(constvars.LoggingObjectCountKey, len(files)),
	)
	return files, nil
}

// isBatchFile drops markers, checksums and side products of the pipeline.
func isBatchFile(file string) bool {
	switch {
	case utils.IsBlank(file),
		file == constvars.StorageSuccessMarker,
		file == constvars.StorageMetadataFile,
		strings.HasSuffix(file, constvars.StorageSuffixMD5Sum),
		strings.HasSuffix(file, constvars.StorageSuffixExtraTgz),
		strings.HasSuffix(file, constvars.StorageSuffixHPO),
		strings.HasPrefix(file, constvars.StorageLogsPrefix):
		return false
	}
	return true
}

func extractVersion(key string) string {
	tokens := strings.Split(key, ".")
	return tokens[len(tokens)-1]
}
