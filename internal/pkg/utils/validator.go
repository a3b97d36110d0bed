package utils

import (
	"regexp"

	"qlinme-service/internal/pkg/constvars"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	batchIDRegex = regexp.MustCompile(constvars.BatchIDPattern)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("batch_id", validateBatchID)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateBatchID(fl validator.FieldLevel) bool {
	return batchIDRegex.MatchString(fl.Field().String())
}
