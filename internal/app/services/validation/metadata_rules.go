package validation

import (
	"fmt"
	"qlinme-service/internal/app/models"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/utils"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// fieldCheck runs after the presence check of a field, whatever its outcome.
type fieldCheck func(r *run, field, value string)

// fieldRule describes one field of T. Rules are evaluated in table order,
// which is also the order of the report keys.
type fieldRule[T any] struct {
	name string
	// nameOf overrides name when the reported path depends on the subject.
	nameOf  func(subject *T) string
	value   func(subject *T) string
	allowed func(r *run) []string
	// optional fields skip the presence check but still run their checks.
	optional bool
	checks   []fieldCheck
}

func applyRules[T any](r *run, prefix string, subject *T, rules []fieldRule[T]) {
	for _, rule := range rules {
		name := rule.name
		if rule.nameOf != nil {
			name = rule.nameOf(subject)
		}
		field := prefix + "." + name
		value := rule.value(subject)

		if !rule.optional {
			var allowed []string
			if rule.allowed != nil {
				allowed = rule.allowed(r)
			}
			r.requireField(field, value, allowed)
		}
		for _, check := range rule.checks {
			check(r, field, value)
		}
	}
}

func fixed(values []string) func(*run) []string {
	return func(*run) []string { return values }
}

func boolText(value *bool) string {
	if value == nil {
		return ""
	}
	return strconv.FormatBool(*value)
}

func fetusText(value *bool) string {
	if value == nil {
		return constvars.FetusNull
	}
	return strconv.FormatBool(*value)
}

func intText(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}

var analysisRules = []fieldRule[models.Analysis]{
	{
		name:    "ldm",
		value:   func(a *models.Analysis) string { return a.LDM },
		allowed: func(r *run) []string { return r.ldmValues },
	},
	{name: "ldmSpecimenId", value: func(a *models.Analysis) string { return a.LDMSpecimenID }},
	{name: "ldmSampleId", value: func(a *models.Analysis) string { return a.LDMSampleID }},
	{
		name:   "labAliquotId",
		value:  func(a *models.Analysis) string { return a.LabAliquotID },
		checks: []fieldCheck{unique("labAliquotId"), notInOtherBatch(aliquotIDsByBatch)},
	},
	{
		name:     "ldmServiceRequestId",
		value:    func(a *models.Analysis) string { return a.LDMServiceRequestID },
		optional: true,
		checks:   []fieldCheck{notInOtherBatch(serviceRequestIDsByBatch)},
	},
	{
		name:    "panelCode",
		nameOf:  panelCodeField,
		value:   panelCodeValue,
		allowed: func(r *run) []string { return r.panelCodes },
		checks:  []fieldCheck{panelCodeForSchema},
	},
	{
		name:    "sampleType",
		value:   func(a *models.Analysis) string { return a.SampleType },
		allowed: fixed(constvars.SampleTypes),
	},
	{name: "ldmServiceRequestId", value: func(a *models.Analysis) string { return a.LDMServiceRequestID }},
	{
		name:    "specimenType",
		value:   func(a *models.Analysis) string { return a.SpecimenType },
		allowed: fixed(constvars.SpecimenTypes),
		checks:  []fieldCheck{specimenTypeForSchema},
	},
}

// analysisCode wins over panelCode and names the reported field.
func panelCodeField(a *models.Analysis) string {
	if a.AnalysisCode != nil {
		return "analysisCode"
	}
	return "panelCode"
}

func panelCodeValue(a *models.Analysis) string {
	if a.AnalysisCode != nil {
		return *a.AnalysisCode
	}
	return a.PanelCode
}

var patientFieldRules = []fieldRule[models.Patient]{
	{
		name:   "firstName",
		value:  func(p *models.Patient) string { return p.FirstName },
		checks: []fieldCheck{noSpecialCharacters},
	},
	{
		name:   "lastName",
		value:  func(p *models.Patient) string { return p.LastName },
		checks: []fieldCheck{noSpecialCharacters},
	},
	{
		name:    "ep",
		value:   func(p *models.Patient) string { return p.EP },
		allowed: func(r *run) []string { return r.epValues },
	},
	{
		name:    "familyMember",
		value:   func(p *models.Patient) string { return p.FamilyMember },
		allowed: fixed(constvars.FamilyMembers),
	},
	{
		name:    "fetus",
		value:   func(p *models.Patient) string { return fetusText(p.Fetus) },
		allowed: fixed(constvars.FetusValues),
	},
	{
		name:    "sex",
		value:   func(p *models.Patient) string { return strings.ToLower(p.Sex) },
		allowed: fixed(constvars.SexValues),
	},
	{
		name:   "birthDate",
		value:  func(p *models.Patient) string { return p.BirthDate },
		checks: []fieldCheck{dateFormat(constvars.DateFormatDMY)},
	},
	{
		name:    "status",
		value:   func(p *models.Patient) string { return p.Status },
		allowed: fixed(constvars.PatientStatuses),
	},
}

// Identifiers are checked after the known patient cross check.
var patientIdentifierRules = []fieldRule[models.Patient]{
	{
		name:     "mrn",
		value:    func(p *models.Patient) string { return p.MRN },
		optional: true,
		checks:   []fieldCheck{unique("mrn"), noSpecialCharacters},
	},
	{
		name:     "ramq",
		value:    func(p *models.Patient) string { return p.RAMQ },
		optional: true,
		checks:   []fieldCheck{unique("ramq"), validRAMQ},
	},
}

var experimentRules = []fieldRule[models.Experiment]{
	{name: "platform", value: func(e *models.Experiment) string { return e.Platform }},
	{name: "sequencerId", value: func(e *models.Experiment) string { return e.SequencerID }},
	{
		name:   "runName",
		value:  func(e *models.Experiment) string { return e.RunName },
		checks: []fieldCheck{runNameInBatchID},
	},
	{
		name:   "runDate",
		value:  func(e *models.Experiment) string { return e.RunDate },
		checks: []fieldCheck{dateFormat(constvars.DateFormatDMY, constvars.DateFormatISO)},
	},
	{name: "runAlias", value: func(e *models.Experiment) string { return e.RunAlias }},
	{name: "flowcellId", value: func(e *models.Experiment) string { return e.FlowcellID }},
	{name: "isPairedEnd", value: func(e *models.Experiment) string { return boolText(e.IsPairedEnd) }},
	{name: "fragmentSize", value: func(e *models.Experiment) string { return intText(e.FragmentSize) }},
	{name: "experimentalStrategy", value: func(e *models.Experiment) string { return e.ExperimentalStrategy }},
	{name: "captureKit", value: func(e *models.Experiment) string { return e.CaptureKit }},
	{name: "baitDefinition", value: func(e *models.Experiment) string { return e.BaitDefinition }},
}

var workflowRules = []fieldRule[models.Workflow]{
	{name: "name", value: func(w *models.Workflow) string { return w.Name }},
	{
		name:    "version",
		value:   func(w *models.Workflow) string { return w.Version },
		allowed: func(r *run) []string { return r.workflowVersions },
	},
	{name: "genomeBuild", value: func(w *models.Workflow) string { return w.GenomeBuild }},
}

// Checks

func unique(globalField string) fieldCheck {
	return func(r *run, field, value string) {
		if utils.IsBlank(value) {
			return
		}
		seen := r.seen[globalField]
		if seen == nil {
			seen = make(map[string]struct{})
			r.seen[globalField] = seen
		}
		if _, ok := seen[value]; ok {
			r.report.AddError(field, fmt.Sprintf(constvars.MsgShouldBeUnique, value))
			return
		}
		seen[value] = struct{}{}
	}
}

func aliquotIDsByBatch(r *run) map[string][]string {
	return r.ref.AliquotIDsByBatch
}

func serviceRequestIDsByBatch(r *run) map[string][]string {
	return r.ref.ServiceRequestIDsByBatch
}

// notInOtherBatch reports the first other batch, by id, that already owns
// the value.
func notInOtherBatch(byBatch func(r *run) map[string][]string) fieldCheck {
	return func(r *run, field, value string) {
		if utils.IsBlank(value) {
			return
		}
		identifiers := byBatch(r)
		batchIDs := make([]string, 0, len(identifiers))
		for batchID := range identifiers {
			batchIDs = append(batchIDs, batchID)
		}
		sort.Strings(batchIDs)

		for _, batchID := range batchIDs {
			if batchID != r.batchID && utils.Contains(identifiers[batchID], value) {
				r.report.AddError(field, fmt.Sprintf(constvars.MsgExistsInAnotherBatch, value, batchID))
				return
			}
		}
	}
}

func panelCodeForSchema(r *run, field, value string) {
	switch r.schema {
	case constvars.SchemaTumorExome:
		if value != constvars.PanelCodeTumor {
			r.report.AddError(field, constvars.MsgShouldBeTumorPanel)
		}
	case constvars.SchemaGermline:
		if value == constvars.PanelCodeTumor {
			r.report.AddError(field, constvars.MsgShouldNotBeTumorPanel)
		}
	}
}

func specimenTypeForSchema(r *run, field, value string) {
	if utils.IsBlank(r.schema) || utils.IsBlank(value) {
		return
	}
	switch {
	case r.schema == constvars.SchemaGermline && value != constvars.SpecimenNBL:
		r.report.AddError(field, fmt.Sprintf(constvars.MsgSpecimenForSchema, value, constvars.SpecimenNBL, constvars.SchemaGermline))
	case r.schema == constvars.SchemaTumorExome && value != constvars.SpecimenTumor:
		r.report.AddError(field, fmt.Sprintf(constvars.MsgSpecimenForSchema, value, constvars.SpecimenTumor, constvars.SchemaTumorExome))
	}
}

func dateFormat(formats ...string) fieldCheck {
	return func(r *run, field, value string) {
		if utils.IsBlank(value) || utils.IsValidDate(value, formats...) {
			return
		}
		r.report.AddError(field, fmt.Sprintf(constvars.MsgDateFormat, value, strings.Join(formats, constvars.DateFormatSeparatorInReport)))
	}
}

func noSpecialCharacters(r *run, field, value string) {
	if utils.IsBlank(value) {
		return
	}
	if utf8.RuneCountInString(value) < 2 || !utils.HasNoSpecialCharacters(value) {
		r.report.AddError(field, fmt.Sprintf(constvars.MsgSpecialCharacters, value))
	}
}

func validRAMQ(r *run, field, value string) {
	if !utils.IsBlank(value) && !utils.IsValidRAMQ(value) {
		r.report.AddError(field, fmt.Sprintf(constvars.MsgInvalidRAMQ, value))
	}
}

// runNameInBatchID only warns, the document fails when no run name at all
// matches the batch.
func runNameInBatchID(r *run, field, value string) {
	if utils.IsBlank(value) {
		return
	}
	if !strings.Contains(r.batchID, value) {
		r.report.AddWarning(field, fmt.Sprintf(constvars.MsgRunNameSimilar, value, r.batchID))
		return
	}
	r.validRunNames[value] = struct{}{}
}
