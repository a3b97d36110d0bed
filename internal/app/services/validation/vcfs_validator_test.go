package validation

import (
	"context"
	"errors"
	"qlinme-service/internal/app/models"
	"qlinme-service/internal/pkg/constvars"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockVCFAliquotExtractor struct {
	mock.Mock
}

func (m *MockVCFAliquotExtractor) ExtractAliquotIDs(ctx context.Context, key string, allowCache bool) ([]string, error) {
	args := m.Called(ctx, key, allowCache)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func TestVCFsValidator_Validate(t *testing.T) {
	ctx := context.Background()
	vcf1 := "00001" + constvars.VCFSuffixGermline
	vcf2 := "00002" + constvars.VCFSuffixGermline

	t.Run("reconciles sample ids with declared aliquots", func(t *testing.T) {
		extractor := new(MockVCFAliquotExtractor)
		extractor.On("ExtractAliquotIDs", mock.Anything, "b1/"+vcf1, true).Return([]string{"00001"}, nil)
		extractor.On("ExtractAliquotIDs", mock.Anything, "b1/"+vcf2, true).Return([]string{"00002", "00003"}, nil)
		v := NewVCFsValidator(extractor, 2, zap.NewNop(), nil)

		report, err := v.Validate(ctx, germline(testAnalysis("00001", "", "PROBAND")), "b1", []string{"00001.cram", vcf1, vcf2}, true)

		require.NoError(t, err)
		assert.Empty(t, report.Errors.Keys())
		assert.Equal(t, []string{"00002", "00003"}, report.Warnings.Keys())
		assert.Equal(t, []string{"not related with metadata but found in VCF: [" + vcf2 + "]"}, report.Warnings.Get("00002"))
		assert.Equal(t, 2, report.VCFsCount)
		assert.True(t, report.IsValid())
		extractor.AssertExpectations(t)
	})

	t.Run("declared aliquot without variant file", func(t *testing.T) {
		extractor := new(MockVCFAliquotExtractor)
		extractor.On("ExtractAliquotIDs", mock.Anything, "b1/"+vcf1, false).Return([]string{"00001"}, nil)
		v := NewVCFsValidator(extractor, 0, zap.NewNop(), nil)

		metadata := germline(testAnalysis("00001", "", "PROBAND"), testAnalysis("00002", "", "PROBAND"), models.Analysis{})
		report, err := v.Validate(ctx, metadata, "b1", []string{vcf1}, false)

		require.NoError(t, err)
		assert.Equal(t, []string{"00002"}, report.Errors.Keys())
		assert.Equal(t, []string{"in metadata but VCF is missing"}, report.Errors.Get("00002"))
		assert.False(t, report.IsValid())
	})

	t.Run("aliquot found in several files", func(t *testing.T) {
		extractor := new(MockVCFAliquotExtractor)
		extractor.On("ExtractAliquotIDs", mock.Anything, mock.Anything, true).Return([]string{"00001"}, nil)
		v := NewVCFsValidator(extractor, 1, zap.NewNop(), nil)

		report, err := v.Validate(ctx, germline(testAnalysis("00001", "", "PROBAND")), "b1", []string{vcf1, vcf2}, true)

		require.NoError(t, err)
		assert.Equal(t, []string{"has more than one VCF: [" + vcf1 + ", " + vcf2 + "]"}, report.Warnings.Get("00001"))
	})

	t.Run("no variant file", func(t *testing.T) {
		extractor := new(MockVCFAliquotExtractor)
		v := NewVCFsValidator(extractor, 1, zap.NewNop(), nil)

		report, err := v.Validate(ctx, germline(testAnalysis("00001", "", "PROBAND")), "b1", []string{"00001.cram"}, true)

		require.NoError(t, err)
		assert.Equal(t, 0, report.VCFsCount)
		assert.False(t, report.IsValid())
		extractor.AssertNotCalled(t, "ExtractAliquotIDs", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("extraction failure", func(t *testing.T) {
		extractor := new(MockVCFAliquotExtractor)
		extractor.On("ExtractAliquotIDs", mock.Anything, mock.Anything, true).Return(nil, errors.New("boom"))
		v := NewVCFsValidator(extractor, 1, zap.NewNop(), nil)

		report, err := v.Validate(ctx, germline(testAnalysis("00001", "", "PROBAND")), "b1", []string{vcf1}, true)

		assert.Error(t, err)
		assert.Nil(t, report)
	})
}
