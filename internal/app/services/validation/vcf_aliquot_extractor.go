package validation

import (
	"bufio"
	"context"
	"fmt"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/exceptions"
	"qlinme-service/internal/pkg/utils"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// Header lines of multi sample files easily exceed the scanner default.
const maxVCFHeaderLineSize = 16 * 1024 * 1024

type vcfAliquotExtractor struct {
	ObjectStorage contracts.ObjectStorage
	Cache         contracts.TimedCache
	Timeout       time.Duration
	Log           *zap.Logger
}

func NewVCFAliquotExtractor(objectStorage contracts.ObjectStorage, cache contracts.TimedCache, timeout time.Duration, logger *zap.Logger) contracts.VCFAliquotExtractor {
	return &vcfAliquotExtractor{
		ObjectStorage: objectStorage,
		Cache:         cache,
		Timeout:       timeout,
		Log:           logger,
	}
}

// ExtractAliquotIDs returns the sample columns of the #CHROM header. Cached
// ids are keyed by the object last modification, a replaced file never hits
// the previous entry.
func (e *vcfAliquotExtractor) ExtractAliquotIDs(ctx context.Context, key string, allowCache bool) ([]string, error) {
	requestID := utils.GetRequestID(ctx)

	info, err := e.ObjectStorage.Stat(ctx, key)
	if err != nil {
		return nil, err
	}
	cacheKey := fmt.Sprintf(constvars.CacheKeyVCFFormat, key, info.LastModified.UnixMilli())

	var aliquotIDs []string
	found := false
	if allowCache {
		found, err = e.Cache.Get(ctx, cacheKey, &aliquotIDs)
		if err != nil {
			return nil, err
		}
	}

	fresh := !found || len(aliquotIDs) == 0
	if fresh {
		aliquotIDs, err = e.readHeader(ctx, key)
		if err != nil {
			return nil, err
		}
	} else {
		e.Log.Debug("vcfAliquotExtractor.ExtractAliquotIDs from cache",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingCacheKey, cacheKey),
			zap.Int(constvars.LoggingAliquotCountKey, len(aliquotIDs)),
		)
	}

	if len(aliquotIDs) == 0 {
		return nil, exceptions.ErrVCFNoAliquotIDs(nil, key)
	}

	if fresh && !e.sameVersion(ctx, key, info.LastModified) {
		e.Log.Info("vcfAliquotExtractor.ExtractAliquotIDs object replaced while reading, not cached",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingCacheKey, cacheKey),
		)
		return aliquotIDs, nil
	}

	if err := e.Cache.Put(ctx, cacheKey, aliquotIDs); err != nil {
		e.Log.Warn("vcfAliquotExtractor.ExtractAliquotIDs cache put failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingCacheKey, cacheKey),
			zap.Error(err),
		)
	}
	return aliquotIDs, nil
}

// sameVersion reports whether key still carries lastModified once its content
// has been read.
func (e *vcfAliquotExtractor) sameVersion(ctx context.Context, key string, lastModified time.Time) bool {
	info, err := e.ObjectStorage.Stat(ctx, key)
	if err != nil {
		e.Log.Warn("vcfAliquotExtractor.sameVersion error calling ObjectStorage.Stat",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingObjectKey, key),
			zap.Error(err),
		)
		return false
	}
	return info.LastModified.Equal(lastModified)
}

// readHeader stops at the first #CHROM line, the variant records are never
// read.
func (e *vcfAliquotExtractor) readHeader(ctx context.Context, key string) ([]string, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	object, err := e.ObjectStorage.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer object.Close()

	reader, err := gzip.NewReader(object)
	if err != nil {
		return nil, exceptions.ErrVCFOpen(err, key)
	}
	defer reader.Close()

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxVCFHeaderLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, constvars.VCFHeaderChrom) {
			return sampleColumns(line), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, exceptions.ErrVCFRead(err, key)
	}

	e.Log.Info("vcfAliquotExtractor.readHeader no header line",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingObjectKey, key),
	)
	return nil, nil
}

// sampleColumns drops the fixed columns, a header without samples yields
// nothing.
func sampleColumns(line string) []string {
	columns := strings.Split(line, "\t")
	if len(columns) <= constvars.VCFFixedColumns {
		return nil
	}
	aliquotIDs := make([]string, 0, len(columns)-constvars.VCFFixedColumns)
	for _, column := range columns[constvars.VCFFixedColumns:] {
		if !utils.IsBlank(column) {
			aliquotIDs = append(aliquotIDs, column)
		}
	}
	return aliquotIDs
}
