package validation

import (
	"fmt"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/app/models"
	"qlinme-service/internal/app/services/shared/metrics"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/utils"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type metadataValidator struct {
	Log     *zap.Logger
	Metrics *metrics.Metrics
}

var (
	metadataValidatorInstance contracts.MetadataValidator
	onceMetadataValidator     sync.Once
)

func NewMetadataValidator(logger *zap.Logger, m *metrics.Metrics) contracts.MetadataValidator {
	onceMetadataValidator.Do(func() {
		metadataValidatorInstance = &metadataValidator{
			Log:     logger,
			Metrics: m,
		}
	})
	return metadataValidatorInstance
}

// run carries the state of one Validate call. Nothing survives between
// calls, so the validator itself is safe for concurrent use.
type run struct {
	batchID          string
	schema           string
	ref              *models.ReferenceData
	ldmValues        []string
	epValues         []string
	panelCodes       []string
	workflowVersions []string
	report           *models.MetadataValidation
	seen             map[string]map[string]struct{}
	families         map[string][]string
	validRunNames    map[string]struct{}
}

func newRun(batchID string, ref *models.ReferenceData, report *models.MetadataValidation) *run {
	if ref == nil {
		ref = &models.ReferenceData{}
	}
	r := &run{
		batchID:       batchID,
		ref:           ref,
		report:        report,
		seen:          make(map[string]map[string]struct{}),
		families:      make(map[string][]string),
		validRunNames: make(map[string]struct{}),
		// empty but non nil, an empty reference list rejects every value
		ldmValues:  []string{},
		epValues:   []string{},
		panelCodes: append([]string{}, ref.PanelCodes...),
	}
	for _, organization := range ref.Organizations {
		if strings.HasPrefix(organization, constvars.OrganizationLDM) {
			r.ldmValues = append(r.ldmValues, organization)
		} else {
			r.epValues = append(r.epValues, organization)
		}
	}
	r.workflowVersions = ref.WorkflowVersions
	if len(r.workflowVersions) == 0 {
		r.workflowVersions = constvars.DefaultWorkflowVersion
	}
	return r
}

func (v *metadataValidator) Validate(metadata *models.Metadata, batchID string, reference *models.ReferenceData) *models.MetadataValidation {
	report := &models.MetadataValidation{}
	r := newRun(batchID, reference, report)

	if metadata == nil {
		report.AddError(constvars.FieldMetadata, constvars.MsgIsRequired)
	} else {
		r.schema = metadata.SubmissionSchema
		report.Schema = metadata.SubmissionSchema
		report.BatchID = batchID
		r.requireField(constvars.FieldSubmissionSchema, metadata.SubmissionSchema, constvars.SupportedSchemas)

		if len(metadata.Analyses) == 0 {
			report.AddError(constvars.FieldAnalyses, constvars.MsgIsRequired)
		} else {
			report.AnalysesCount = len(metadata.Analyses)
			for i := range metadata.Analyses {
				r.validateAnalysis(fmt.Sprintf(constvars.FieldAnalysisFormat, i), &metadata.Analyses[i])
			}
			r.validateFamilies()
			if len(r.validRunNames) == 0 {
				report.AddError(constvars.FieldExperimentRunName, constvars.MsgAtLeastOneValidRunName)
			}
		}
	}

	v.Log.Info("metadataValidator.Validate completed",
		zap.String(constvars.LoggingBatchIDKey, batchID),
		zap.String(constvars.LoggingSchemaKey, report.Schema),
		zap.Int(constvars.LoggingAnalysesCountKey, report.AnalysesCount),
		zap.Int(constvars.LoggingErrorsCountKey, report.Errors.Len()),
		zap.Int(constvars.LoggingWarningsCountKey, report.Warnings.Len()),
		zap.Bool(constvars.LoggingIsValidKey, report.IsValid()),
	)
	v.Metrics.ObserveValidation("metadata", report.IsValid())
	return report
}

// requireField reports a blank value, or a value outside allowed when the
// list is given. A blank value against an empty list is only missing.
func (r *run) requireField(field, value string, allowed []string) {
	switch {
	case utils.IsBlank(value) && len(allowed) > 0:
		r.report.AddError(field, fmt.Sprintf(constvars.MsgShouldBe, utils.FormatList(allowed)))
	case utils.IsBlank(value):
		r.report.AddError(field, constvars.MsgIsMissing)
	case allowed != nil && !utils.Contains(allowed, value):
		r.report.AddError(field, fmt.Sprintf(constvars.MsgValueShouldBe, value, utils.FormatList(allowed)))
	}
}

func (r *run) validateAnalysis(prefix string, analysis *models.Analysis) {
	applyRules(r, prefix, analysis, analysisRules)
	r.validatePatient(prefix, analysis.Patient)
	r.validateExperiment(prefix, analysis.Experiment)
	r.validateWorkflow(prefix, analysis.Workflow)
	r.validateFiles(prefix, analysis)
}

func (r *run) validatePatient(prefix string, patient *models.Patient) {
	prefix += ".patient"
	if patient == nil {
		r.report.AddError(prefix, constvars.MsgIsRequired)
		patient = &models.Patient{}
	}

	applyRules(r, prefix, patient, patientFieldRules)

	if utils.IsBlank(patient.MRN) && utils.IsBlank(patient.RAMQ) {
		r.report.AddError(prefix, constvars.MsgMrnOrRamq)
	}
	r.compareWithKnownPatient(prefix, patient)

	applyRules(r, prefix, patient, patientIdentifierRules)

	if !utils.IsBlank(patient.FamilyID) {
		r.families[patient.FamilyID] = append(r.families[patient.FamilyID], patient.FamilyMember)
	}
}

// compareWithKnownPatient matches on mrn within the same ep, or on ramq.
// Identifier mismatches are errors, demographic ones are warnings.
func (r *run) compareWithKnownPatient(prefix string, patient *models.Patient) {
	existing := r.findKnownPatient(patient)
	if existing == nil {
		return
	}

	mismatch := func(field, value, known string, asError bool) {
		if utils.IsBlank(known) || value == known {
			return
		}
		message := fmt.Sprintf(constvars.MsgMismatchExisting, value, known)
		if asError {
			r.report.AddError(prefix+"."+field, message)
		} else {
			r.report.AddWarning(prefix+"."+field, message)
		}
	}

	mismatch("mrn", patient.MRN, existing.MRN, true)
	mismatch("ramq", patient.RAMQ, existing.RAMQ, true)
	mismatch("firstName", patient.FirstName, existing.FirstName, false)
	mismatch("lastName", patient.LastName, existing.LastName, false)
	mismatch("sex", strings.ToLower(patient.Sex), strings.ToLower(existing.Sex), false)
	mismatch("birthDate", patient.BirthDate, existing.BirthDate, false)
}

func (r *run) findKnownPatient(patient *models.Patient) *models.Patient {
	for i := range r.ref.Patients {
		known := &r.ref.Patients[i]
		sameMRN := !utils.IsBlank(patient.MRN) && known.MRN == patient.MRN && known.EP == patient.EP
		sameRAMQ := !utils.IsBlank(patient.RAMQ) && known.RAMQ == patient.RAMQ
		if sameMRN || sameRAMQ {
			return known
		}
	}
	return nil
}

func (r *run) validateExperiment(prefix string, experiment *models.Experiment) {
	prefix += ".experiment"
	if experiment == nil {
		r.report.AddError(prefix, constvars.MsgIsRequired)
		experiment = &models.Experiment{}
	}
	applyRules(r, prefix, experiment, experimentRules)
}

func (r *run) validateWorkflow(prefix string, workflow *models.Workflow) {
	prefix += ".workflow"
	if workflow == nil {
		r.report.AddError(prefix, constvars.MsgIsRequired)
		workflow = &models.Workflow{}
	}
	applyRules(r, prefix, workflow, workflowRules)
}

func (r *run) validateFiles(prefix string, analysis *models.Analysis) {
	prefix += ".files"
	if analysis.Files == nil {
		r.report.AddError(prefix, constvars.MsgIsRequired)
		return
	}

	unknown := make([]string, 0)
	for key := range analysis.Files {
		if !utils.Contains(constvars.SupportedFiles, key) {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		r.report.AddError(prefix+"."+key, fmt.Sprintf(constvars.MsgSupportedFiles, utils.FormatList(constvars.SupportedFiles)))
	}

	familyMember := ""
	if analysis.Patient != nil {
		familyMember = analysis.Patient.FamilyMember
	}
	if utils.Contains(constvars.ParentFamilyMembers, familyMember) {
		for _, key := range constvars.ExomiserFiles {
			if !utils.IsBlank(analysis.Files[key]) {
				r.report.AddError(prefix, constvars.MsgParentWithExomiser)
				break
			}
		}
	}
}

// validateFamilies reports at most one problem per family.
func (r *run) validateFamilies() {
	familyIDs := make([]string, 0, len(r.families))
	for familyID := range r.families {
		familyIDs = append(familyIDs, familyID)
	}
	sort.Strings(familyIDs)

	for _, familyID := range familyIDs {
		members := r.families[familyID]
		field := fmt.Sprintf(constvars.FieldFamilyFormat, familyID)
		membersText := utils.FormatList(members)

		if len(members) == 1 {
			r.report.AddError(field, fmt.Sprintf(constvars.MsgFamilySingleMember, membersText))
		} else if hasRepeatedRole(members) {
			r.report.AddError(field, fmt.Sprintf(constvars.MsgFamilyDistinctMembers, membersText))
		} else if !utils.Contains(members, constvars.FamilyProband) {
			r.report.AddError(field, fmt.Sprintf(constvars.MsgFamilyNeedsProband, membersText))
		}
	}
}

func hasRepeatedRole(members []string) bool {
	for role, count := range utils.CountBy(members) {
		if count > 1 && !utils.Contains(constvars.RepeatableFamilyMembers, role) {
			return true
		}
	}
	return false
}
