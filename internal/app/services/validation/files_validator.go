package validation

import (
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/app/models"
	"qlinme-service/internal/app/services/shared/metrics"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/utils"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type filesValidator struct {
	Log     *zap.Logger
	Metrics *metrics.Metrics
}

var (
	filesValidatorInstance contracts.FilesValidator
	onceFilesValidator     sync.Once
)

func NewFilesValidator(logger *zap.Logger, m *metrics.Metrics) contracts.FilesValidator {
	onceFilesValidator.Do(func() {
		filesValidatorInstance = &filesValidator{
			Log:     logger,
			Metrics: m,
		}
	})
	return filesValidatorInstance
}

func (v *filesValidator) Validate(metadata *models.Metadata, batchID string, files []string) *models.FilesValidation {
	report := &models.FilesValidation{BatchID: batchID}
	if metadata != nil {
		report.Schema = metadata.SubmissionSchema
	}

	if len(files) == 0 {
		report.AddError(constvars.FieldFiles, constvars.MsgFilesAreMissing)
	} else {
		report.FilesCount = len(files)
		stored := make(map[string]struct{}, len(files))
		for _, file := range files {
			stored[file] = struct{}{}
		}

		declared := make(map[string]struct{})
		if metadata != nil {
			for _, analysis := range metadata.Analyses {
				for _, key := range constvars.SupportedFiles {
					file := analysis.Files[key]
					if utils.IsBlank(file) {
						continue
					}
					declared[file] = struct{}{}
					if _, ok := stored[file]; !ok {
						report.AddError(file, constvars.MsgIsMissing)
					}
				}
			}
		}

		for _, file := range files {
			if _, ok := declared[file]; ok {
				continue
			}
			if isVCF(report.Schema, file) {
				report.VCFsCount++
			} else {
				report.AddError(file, constvars.MsgFileNotInMetadata)
			}
		}
	}

	v.Log.Info("filesValidator.Validate completed",
		zap.String(constvars.LoggingBatchIDKey, batchID),
		zap.Int(constvars.LoggingFilesCountKey, report.FilesCount),
		zap.Int(constvars.LoggingVCFsCountKey, report.VCFsCount),
		zap.Int(constvars.LoggingErrorsCountKey, report.Errors.Len()),
		zap.Bool(constvars.LoggingIsValidKey, report.IsValid()),
	)
	v.Metrics.ObserveValidation("files", report.IsValid())
	return report
}

// isVCF matches the variant file suffix of the schema, other schemas have
// no variant files.
func isVCF(schema, file string) bool {
	var suffix string
	switch schema {
	case constvars.SchemaGermline:
		suffix = constvars.VCFSuffixGermline
	case constvars.SchemaTumorExome:
		suffix = constvars.VCFSuffixTumor
	default:
		return false
	}
	return strings.HasSuffix(strings.ToLower(file), suffix)
}
