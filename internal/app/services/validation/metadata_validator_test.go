package validation

import (
	"qlinme-service/internal/app/models"
	"qlinme-service/internal/pkg/constvars"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testBatchID = "201106_A00516_0169_AHFM3HDSXY"

func newTestMetadataValidator() *metadataValidator {
	return &metadataValidator{Log: zap.NewNop()}
}

func testReference() *models.ReferenceData {
	return &models.ReferenceData{
		PanelCodes:        []string{"RGDI", "MMG", constvars.PanelCodeTumor},
		Organizations:     []string{"CHUSJ", "LDM-CHUSJ", "CUSM", "LDM-CUSM"},
		AliquotIDsByBatch: map[string][]string{"another_batch": {"16900"}, testBatchID: {"1"}},
		ServiceRequestIDsByBatch: map[string][]string{
			"another_batch": {"SR-OLD"},
		},
		Patients: []models.Patient{{
			FirstName: "First Name",
			LastName:  "Last Name",
			Sex:       "MALE",
			RAMQ:      "LASF11112222",
			BirthDate: "12/08/1981",
			MRN:       "MRN-00001",
			EP:        "CHUSJ",
		}},
	}
}

func testAnalysis(aliquot, familyID, member string) models.Analysis {
	pairedEnd := true
	fragmentSize := 100
	return models.Analysis{
		LDM:                 "LDM-CHUSJ",
		LDMSampleID:         "SA-" + aliquot,
		LDMSpecimenID:       "SP-" + aliquot,
		SpecimenType:        constvars.SpecimenNBL,
		SampleType:          constvars.SampleTypeDNA,
		LDMServiceRequestID: "SR-" + aliquot,
		LabAliquotID:        aliquot,
		PanelCode:           "MMG",
		Patient: &models.Patient{
			FirstName:    "Jane",
			LastName:     "Doe",
			Sex:          "Female",
			BirthDate:    "12/08/1981",
			MRN:          "MRN-" + aliquot,
			EP:           "CHUSJ",
			FamilyMember: member,
			FamilyID:     familyID,
			Status:       constvars.StatusAffected,
		},
		Experiment: &models.Experiment{
			Platform:             "Illumina",
			SequencerID:          "A00516",
			RunName:              "A00516_0169",
			RunDate:              "2020-11-06",
			RunAlias:             "A00516_0169",
			FlowcellID:           "HFM3HDSXY",
			IsPairedEnd:          &pairedEnd,
			FragmentSize:         &fragmentSize,
			ExperimentalStrategy: "WXS",
			CaptureKit:           "RocheKapaHyperExome",
			BaitDefinition:       "KAPA_HyperExome_hg38_capture_targets",
		},
		Workflow: &models.Workflow{
			Name:        "Dragen",
			Version:     "4.2.4",
			GenomeBuild: "GRCh38",
		},
		Files: map[string]string{
			constvars.FileCRAM:   aliquot + ".cram",
			constvars.FileCRAI:   aliquot + ".cram.crai",
			constvars.FileSNVVCF: aliquot + constvars.VCFSuffixGermline,
		},
	}
}

func germline(analyses ...models.Analysis) *models.Metadata {
	return &models.Metadata{SubmissionSchema: constvars.SchemaGermline, Analyses: analyses}
}

func TestMetadataValidator_Validate(t *testing.T) {
	v := newTestMetadataValidator()

	t.Run("valid family", func(t *testing.T) {
		report := v.Validate(germline(testAnalysis("1", "F1", "PROBAND"), testAnalysis("2", "F1", "MTH")), testBatchID, testReference())

		assert.Empty(t, report.Errors.Keys())
		assert.Empty(t, report.Warnings.Keys())
		assert.Equal(t, 2, report.AnalysesCount)
		assert.Equal(t, constvars.SchemaGermline, report.Schema)
		assert.Equal(t, testBatchID, report.BatchID)
		assert.True(t, report.IsValid())
	})

	t.Run("nil metadata", func(t *testing.T) {
		report := v.Validate(nil, testBatchID, testReference())

		assert.Equal(t, []string{"metadata"}, report.Errors.Keys())
		assert.Equal(t, []string{"is required"}, report.Errors.Get("metadata"))
		assert.Empty(t, report.BatchID)
		assert.False(t, report.IsValid())
	})

	t.Run("missing analyses", func(t *testing.T) {
		report := v.Validate(germline(), testBatchID, testReference())

		assert.Equal(t, []string{"analyses"}, report.Errors.Keys())
		assert.Equal(t, []string{"is required"}, report.Errors.Get("analyses"))
		assert.Equal(t, 0, report.AnalysesCount)
		assert.False(t, report.IsValid())
	})

	t.Run("unsupported schema", func(t *testing.T) {
		metadata := germline(testAnalysis("1", "", "PROBAND"))
		metadata.SubmissionSchema = "foo"
		report := v.Validate(metadata, testBatchID, testReference())

		assert.Equal(t, []string{"'foo' should be [CQGC_Germline, CQGC_Exome_Tumeur_Seul]"}, report.Errors.Get("submissionSchema"))
	})

	t.Run("blank analysis reports every field in order", func(t *testing.T) {
		report := v.Validate(germline(models.Analysis{}), testBatchID, testReference())

		keys := report.Errors.Keys()
		require.GreaterOrEqual(t, len(keys), 10)
		assert.Equal(t, []string{
			"analyses[0].ldm",
			"analyses[0].ldmSpecimenId",
			"analyses[0].ldmSampleId",
			"analyses[0].labAliquotId",
			"analyses[0].panelCode",
			"analyses[0].sampleType",
			"analyses[0].ldmServiceRequestId",
			"analyses[0].specimenType",
			"analyses[0].patient",
			"analyses[0].patient.firstName",
		}, keys[:10])
		assert.Equal(t, "Experiment.runName", keys[len(keys)-1])

		assert.Equal(t, []string{"should be [LDM-CHUSJ, LDM-CUSM]"}, report.Errors.Get("analyses[0].ldm"))
		assert.Equal(t, []string{"is missing"}, report.Errors.Get("analyses[0].ldmSpecimenId"))
		assert.Equal(t, []string{"should be [RGDI, MMG, EXTUM]"}, report.Errors.Get("analyses[0].panelCode"))
		assert.Equal(t, []string{"is required", "should have mrn or ramq or both"}, report.Errors.Get("analyses[0].patient"))
		assert.Equal(t, []string{"should be [CHUSJ, CUSM]"}, report.Errors.Get("analyses[0].patient.ep"))
		assert.Empty(t, report.Errors.Get("analyses[0].patient.fetus"))
		assert.Equal(t, []string{"is required"}, report.Errors.Get("analyses[0].experiment"))
		assert.Equal(t, []string{"is missing"}, report.Errors.Get("analyses[0].experiment.isPairedEnd"))
		assert.Equal(t, []string{"should be [3.8.4, 3.10.4, 4.2.4]"}, report.Errors.Get("analyses[0].workflow.version"))
		assert.Equal(t, []string{"is required"}, report.Errors.Get("analyses[0].files"))
		assert.Equal(t, []string{"should have at least one valid runName"}, report.Errors.Get("Experiment.runName"))
	})

	t.Run("invalid values", func(t *testing.T) {
		fetus := true
		analysis := testAnalysis("1", "", "PROBAND")
		analysis.LDM = "CHUSJ"
		analysis.Patient.FirstName = "J"
		analysis.Patient.LastName = "Doe!"
		analysis.Patient.BirthDate = "1981-08-12"
		analysis.Patient.RAMQ = "FOOO01500100"
		analysis.Patient.Fetus = &fetus
		analysis.Experiment.RunDate = "11/2020"
		analysis.Workflow.Version = "1.0.0"

		report := v.Validate(germline(analysis), testBatchID, testReference())

		assert.Equal(t, []string{"'CHUSJ' should be [LDM-CHUSJ, LDM-CUSM]"}, report.Errors.Get("analyses[0].ldm"))
		assert.Equal(t, []string{"'J' should have length >= 2 and no special characters, cf. regex: " + constvars.NamePatternDisplay}, report.Errors.Get("analyses[0].patient.firstName"))
		assert.Len(t, report.Errors.Get("analyses[0].patient.lastName"), 1)
		assert.Equal(t, []string{"'true' should be [false, null]"}, report.Errors.Get("analyses[0].patient.fetus"))
		assert.Equal(t, []string{"'1981-08-12' should be formatted like: dd/MM/yyyy"}, report.Errors.Get("analyses[0].patient.birthDate"))
		assert.Equal(t, []string{"'FOOO01500100' should be a valid RAMQ number"}, report.Errors.Get("analyses[0].patient.ramq"))
		assert.Equal(t, []string{"'11/2020' should be formatted like: dd/MM/yyyy or yyyy-MM-dd"}, report.Errors.Get("analyses[0].experiment.runDate"))
		assert.Equal(t, []string{"'1.0.0' should be [3.8.4, 3.10.4, 4.2.4]"}, report.Errors.Get("analyses[0].workflow.version"))
		assert.Empty(t, report.Errors.Get("analyses[0].patient.sex"))
	})

	t.Run("configured workflow versions replace defaults", func(t *testing.T) {
		reference := testReference()
		reference.WorkflowVersions = []string{"5.0.0"}

		report := v.Validate(germline(testAnalysis("1", "", "PROBAND")), testBatchID, reference)

		assert.Equal(t, []string{"'4.2.4' should be [5.0.0]"}, report.Errors.Get("analyses[0].workflow.version"))
	})

	t.Run("unique values", func(t *testing.T) {
		first := testAnalysis("2", "", "PROBAND")
		second := testAnalysis("2", "", "PROBAND")
		second.Patient.MRN = first.Patient.MRN

		report := v.Validate(germline(first, second), testBatchID, testReference())

		assert.Empty(t, report.Errors.Get("analyses[0].labAliquotId"))
		assert.Equal(t, []string{"'2' should be unique"}, report.Errors.Get("analyses[1].labAliquotId"))
		assert.Equal(t, []string{"'MRN-2' should be unique"}, report.Errors.Get("analyses[1].patient.mrn"))
	})

	t.Run("identifiers owned by another batch", func(t *testing.T) {
		analysis := testAnalysis("16900", "", "PROBAND")
		analysis.LDMServiceRequestID = "SR-OLD"
		sameBatch := testAnalysis("1", "", "PROBAND")

		report := v.Validate(germline(analysis, sameBatch), testBatchID, testReference())

		assert.Equal(t, []string{"'16900' should be unique and exists in another batch: another_batch"}, report.Errors.Get("analyses[0].labAliquotId"))
		assert.Equal(t, []string{"'SR-OLD' should be unique and exists in another batch: another_batch"}, report.Errors.Get("analyses[0].ldmServiceRequestId"))
		assert.Empty(t, report.Errors.Get("analyses[1].labAliquotId"))
	})

	t.Run("germline rejects tumor panel and specimen", func(t *testing.T) {
		analysis := testAnalysis("1", "", "PROBAND")
		analysis.PanelCode = constvars.PanelCodeTumor
		analysis.SpecimenType = constvars.SpecimenTumor

		report := v.Validate(germline(analysis), testBatchID, testReference())

		assert.Equal(t, []string{"shouldn't be EXTUM for schema: CQGC_Germline"}, report.Errors.Get("analyses[0].panelCode"))
		assert.Equal(t, []string{"'TUMOR' should be: NBL for schema: CQGC_Germline"}, report.Errors.Get("analyses[0].specimenType"))
	})

	t.Run("tumor schema requires tumor panel and specimen", func(t *testing.T) {
		code := "MMG"
		analysis := testAnalysis("1", "", "PROBAND")
		analysis.AnalysisCode = &code
		analysis.PanelCode = ""
		metadata := &models.Metadata{SubmissionSchema: constvars.SchemaTumorExome, Analyses: []models.Analysis{analysis}}

		report := v.Validate(metadata, testBatchID, testReference())

		assert.Equal(t, []string{"should be EXTUM for schema: CQGC_Exome_Tumeur_Seul"}, report.Errors.Get("analyses[0].analysisCode"))
		assert.Empty(t, report.Errors.Get("analyses[0].panelCode"))
		assert.Equal(t, []string{"'NBL' should be: TUMOR for schema: CQGC_Exome_Tumeur_Seul"}, report.Errors.Get("analyses[0].specimenType"))
	})

	t.Run("known patient mismatches", func(t *testing.T) {
		analysis := testAnalysis("1", "", "PROBAND")
		analysis.Patient.MRN = "MRN-00001"
		analysis.Patient.RAMQ = "LASF11112223"

		report := v.Validate(germline(analysis), testBatchID, testReference())

		assert.Equal(t, []string{"'LASF11112223' should be: LASF11112222"}, report.Errors.Get("analyses[0].patient.ramq"))
		assert.Empty(t, report.Errors.Get("analyses[0].patient.mrn"))
		assert.Equal(t, []string{"'Jane' should be: First Name"}, report.Warnings.Get("analyses[0].patient.firstName"))
		assert.Equal(t, []string{"'Doe' should be: Last Name"}, report.Warnings.Get("analyses[0].patient.lastName"))
		assert.Equal(t, []string{"'female' should be: male"}, report.Warnings.Get("analyses[0].patient.sex"))
		assert.Empty(t, report.Warnings.Get("analyses[0].patient.birthDate"))
	})

	t.Run("mrn of another ep is not the known patient", func(t *testing.T) {
		analysis := testAnalysis("1", "", "PROBAND")
		analysis.Patient.MRN = "MRN-00001"
		analysis.Patient.EP = "CUSM"

		report := v.Validate(germline(analysis), testBatchID, testReference())

		assert.Empty(t, report.Warnings.Keys())
	})

	t.Run("one error per family", func(t *testing.T) {
		report := v.Validate(germline(
			testAnalysis("1", "F1", "PROBAND"),
			testAnalysis("2", "F2", "MTH"),
			testAnalysis("3", "F2", "MTH"),
			testAnalysis("4", "F3", "MTH"),
			testAnalysis("5", "F3", "FTH"),
			testAnalysis("6", "F4", "PROBAND"),
			testAnalysis("7", "F4", "SIS"),
			testAnalysis("8", "F4", "SIS"),
			testAnalysis("9", "F5", "PROBAND"),
			testAnalysis("10", "F5", "PROBAND"),
			testAnalysis("11", "F6", "MTH"),
		), testBatchID, testReference())

		for _, familyID := range []string{"F1", "F2", "F3", "F5", "F6"} {
			assert.Len(t, report.Errors.Get("Family."+familyID), 1, familyID)
		}

		assert.Equal(t, []string{"should be without familyId or have more than one familyMember: [PROBAND]"}, report.Errors.Get("Family.F1"))
		assert.Equal(t, []string{"should have distinct familyMembers: [MTH, MTH]"}, report.Errors.Get("Family.F2"))
		assert.Equal(t, []string{"should have at least one PROBAND: [MTH, FTH]"}, report.Errors.Get("Family.F3"))
		assert.Empty(t, report.Errors.Get("Family.F4"))
		assert.Equal(t, []string{"should have distinct familyMembers: [PROBAND, PROBAND]"}, report.Errors.Get("Family.F5"))
		assert.Equal(t, []string{"should be without familyId or have more than one familyMember: [MTH]"}, report.Errors.Get("Family.F6"))
	})

	t.Run("files", func(t *testing.T) {
		parent := testAnalysis("1", "F1", "PROBAND")
		parent.Patient.FamilyMember = "MTH"
		parent.Files["foo"] = "foo.txt"
		parent.Files["bar"] = "bar.txt"
		parent.Files[constvars.FileExomiserHTML] = "1.exomiser.html"
		parent.Files[constvars.FileExomiserJSON] = "1.exomiser.json"
		proband := testAnalysis("2", "F1", "PROBAND")
		proband.Files[constvars.FileExomiserHTML] = "2.exomiser.html"

		report := v.Validate(germline(parent, proband), testBatchID, testReference())

		supported := []string{"Supported files are: [cram, crai, snv_vcf, snv_tbi, cnv_vcf, cnv_tbi, sv_vcf, sv_tbi, supplement, exomiser_html, exomiser_json, exomiser_variants_tsv, seg_bw, hard_filtered_baf_bw, roh_bed, hyper_exome_hg38_bed, cnv_calls_png, coverage_by_gene_csv, qc_metrics]"}
		keys := report.Errors.Keys()
		assert.Equal(t, []string{"analyses[0].files.bar", "analyses[0].files.foo", "analyses[0].files"}, keys)
		assert.Equal(t, supported, report.Errors.Get("analyses[0].files.foo"))
		assert.Equal(t, []string{"familyMember other than PROBAND|SIS|BRO should not have exomiser files"}, report.Errors.Get("analyses[0].files"))
	})

	t.Run("run names", func(t *testing.T) {
		analysis := testAnalysis("1", "", "PROBAND")
		analysis.Experiment.RunName = "OTHER_RUN"

		report := v.Validate(germline(analysis), testBatchID, testReference())

		assert.Equal(t, []string{"'OTHER_RUN' should be similar to batch_id: " + testBatchID}, report.Warnings.Get("analyses[0].experiment.runName"))
		assert.Equal(t, []string{"should have at least one valid runName"}, report.Errors.Get("Experiment.runName"))

		report = v.Validate(germline(analysis, testAnalysis("2", "", "PROBAND")), testBatchID, testReference())
		assert.Empty(t, report.Errors.Get("Experiment.runName"))
	})

	t.Run("nil reference", func(t *testing.T) {
		report := v.Validate(germline(testAnalysis("1", "", "PROBAND")), testBatchID, nil)

		assert.Equal(t, []string{"'LDM-CHUSJ' should be []"}, report.Errors.Get("analyses[0].ldm"))
		assert.Equal(t, []string{"'MMG' should be []"}, report.Errors.Get("analyses[0].panelCode"))

		blank := testAnalysis("1", "", "PROBAND")
		blank.LDM = ""
		blank.Patient.EP = ""
		report = v.Validate(germline(blank), testBatchID, nil)

		assert.Equal(t, []string{"is missing"}, report.Errors.Get("analyses[0].ldm"))
		assert.Equal(t, []string{"is missing"}, report.Errors.Get("analyses[0].patient.ep"))

		report = v.Validate(germline(blank), testBatchID, testReference())
		assert.Equal(t, []string{"should be [LDM-CHUSJ, LDM-CUSM]"}, report.Errors.Get("analyses[0].ldm"))
	})

	t.Run("same input gives the same report", func(t *testing.T) {
		metadata := germline(models.Analysis{}, testAnalysis("1", "F1", "MTH"), testAnalysis("1", "F2", "PROBAND"))

		first, err := json.Marshal(v.Validate(metadata, testBatchID, testReference()))
		require.NoError(t, err)
		second, err := json.Marshal(v.Validate(metadata, testBatchID, testReference()))
		require.NoError(t, err)

		assert.Equal(t, string(first), string(second))
	})
}
