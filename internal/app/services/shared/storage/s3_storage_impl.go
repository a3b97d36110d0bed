package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/app/models"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/exceptions"
	"qlinme-service/internal/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

type s3Storage struct {
	Client     *s3.Client
	BucketName string
	Log        *zap.Logger
}

func NewS3Storage(client *s3.Client, bucketName string, logger *zap.Logger) contracts.ObjectStorage {
	return &s3Storage{
		Client:     client,
		BucketName: bucketName,
		Log:        logger,
	}
}

// List reads a single page, callers never need more than maxKeys objects.
func (s *s3Storage) List(ctx context.Context, prefix string, maxKeys int) ([]models.ObjectInfo, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.BucketName),
		Prefix: aws.String(prefix),
	}
	if maxKeys > 0 {
		input.MaxKeys = aws.Int32(int32(maxKeys))
	}

	out, err := s.Client.ListObjectsV2(ctx, input)
	if err != nil {
		s.Log.Error("s3Storage.List error listing objects",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingBucketKey, s.BucketName),
			zap.String(constvars.LoggingPrefixKey, prefix),
			zap.Error(err),
		)
		return nil, exceptions.ErrStorageListObjects(err, prefix)
	}

	objects := make([]models.ObjectInfo, 0, len(out.Contents))
	for _, object := range out.Contents {
		objects = append(objects, models.ObjectInfo{
			Key:          aws.ToString(object.Key),
			Size:         aws.ToInt64(object.Size),
			LastModified: aws.ToTime(object.LastModified),
		})
	}
	return objects, nil
}

func (s *s3Storage) Stat(ctx context.Context, key string) (*models.ObjectInfo, error) {
	out, err := s.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, exceptions.ErrStorageObjectNotFound(err, key)
		}
		return nil, exceptions.ErrStorageStatObject(err, key)
	}
	return &models.ObjectInfo{
		Key:          key,
		Size:         aws.ToInt64(out.ContentLength),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

func (s *s3Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, exceptions.ErrStorageObjectNotFound(err, key)
		}
		return nil, exceptions.ErrStorageGetObject(err, key)
	}
	return out.Body, nil
}

func (s *s3Storage) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.Log.Error("s3Storage.Put error",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingObjectKey, key),
			zap.Error(err),
		)
		return exceptions.ErrStoragePutObject(err, key)
	}
	return nil
}

func (s *s3Storage) Copy(ctx context.Context, srcKey, dstKey string) error {
	s.Log.Info("s3Storage.Copy called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingObjectKey, srcKey),
		zap.String("destination_key", dstKey),
	)
	source := (&url.URL{Path: s.BucketName + constvars.StoragePathSeparator + srcKey}).EscapedPath()
	_, err := s.Client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.BucketName),
		Key:        aws.String(dstKey),
		CopySource: aws.String(source),
	})
	if err != nil {
		if isS3NotFound(err) {
			return exceptions.ErrStorageObjectNotFound(err, srcKey)
		}
		return exceptions.ErrStorageCopyObject(err, srcKey, dstKey)
	}
	return nil
}

func (s *s3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return exceptions.ErrStorageDeleteObject(err, key)
	}
	return nil
}

func isS3NotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}
