package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/app/models"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/exceptions"
	"qlinme-service/internal/pkg/utils"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

type minioStorage struct {
	MinioClient *minio.Client
	BucketName  string
	Log         *zap.Logger
}

func NewMinioStorage(minioClient *minio.Client, bucketName string, logger *zap.Logger) contracts.ObjectStorage {
	return &minioStorage{
		MinioClient: minioClient,
		BucketName:  bucketName,
		Log:         logger,
	}
}

func (m *minioStorage) List(ctx context.Context, prefix string, maxKeys int) ([]models.ObjectInfo, error) {
	// stop the listing goroutine once enough keys were read
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := make([]models.ObjectInfo, 0)
	for object := range m.MinioClient.ListObjects(ctx, m.BucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
		MaxKeys:   maxKeys,
	}) {
		if object.Err != nil {
			m.Log.Error("minioStorage.List error listing objects",
				zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
				zap.String(constvars.LoggingBucketKey, m.BucketName),
				zap.String(constvars.LoggingPrefixKey, prefix),
				zap.Error(object.Err),
			)
			return nil, exceptions.ErrStorageListObjects(object.Err, prefix)
		}
		objects = append(objects, models.ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
		})
		if maxKeys > 0 && len(objects) >= maxKeys {
			break
		}
	}
	return objects, nil
}

func (m *minioStorage) Stat(ctx context.Context, key string) (*models.ObjectInfo, error) {
	info, err := m.MinioClient.StatObject(ctx, m.BucketName, key, minio.StatObjectOptions{})
	if err != nil {
		if isMinioNotFound(err) {
			return nil, exceptions.ErrStorageObjectNotFound(err, key)
		}
		return nil, exceptions.ErrStorageStatObject(err, key)
	}
	return &models.ObjectInfo{Key: info.Key, Size: info.Size, LastModified: info.LastModified}, nil
}

// Get stats the object first because minio only reports a missing key on
// the first read.
func (m *minioStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	object, err := m.MinioClient.GetObject(ctx, m.BucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, exceptions.ErrStorageGetObject(err, key)
	}
	if _, err := object.Stat(); err != nil {
		object.Close()
		if isMinioNotFound(err) {
			return nil, exceptions.ErrStorageObjectNotFound(err, key)
		}
		return nil, exceptions.ErrStorageGetObject(err, key)
	}
	return object, nil
}

func (m *minioStorage) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := m.MinioClient.PutObject(ctx, m.BucketName, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		m.Log.Error("minioStorage.Put error",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingObjectKey, key),
			zap.Error(err),
		)
		return exceptions.ErrStoragePutObject(err, key)
	}
	return nil
}

func (m *minioStorage) Copy(ctx context.Context, srcKey, dstKey string) error {
	m.Log.Info("minioStorage.Copy called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingObjectKey, srcKey),
		zap.String("destination_key", dstKey),
	)
	_, err := m.MinioClient.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: m.BucketName, Object: dstKey},
		minio.CopySrcOptions{Bucket: m.BucketName, Object: srcKey},
	)
	if err != nil {
		if isMinioNotFound(err) {
			return exceptions.ErrStorageObjectNotFound(err, srcKey)
		}
		return exceptions.ErrStorageCopyObject(err, srcKey, dstKey)
	}
	return nil
}

func (m *minioStorage) Delete(ctx context.Context, key string) error {
	err := m.MinioClient.RemoveObject(ctx, m.BucketName, key, minio.RemoveObjectOptions{})
	if err != nil {
		return exceptions.ErrStorageDeleteObject(err, key)
	}
	return nil
}

func isMinioNotFound(err error) bool {
	response := minio.ToErrorResponse(err)
	return response.Code == "NoSuchKey" || response.StatusCode == http.StatusNotFound
}
