package models

// Metadata is the submission document of one batch.
type Metadata struct {
	SubmissionSchema string     `json:"submissionSchema"`
	Analyses         []Analysis `json:"analyses"`
}

type Analysis struct {
	LDM                 string            `json:"ldm"`
	LDMSampleID         string            `json:"ldmSampleId"`
	LDMSpecimenID       string            `json:"ldmSpecimenId"`
	SpecimenType        string            `json:"specimenType"`
	SampleType          string            `json:"sampleType"`
	LDMServiceRequestID string            `json:"ldmServiceRequestId"`
	LabAliquotID        string            `json:"labAliquotId"`
	Patient             *Patient          `json:"patient"`
	Files               map[string]string `json:"files"`
	AnalysisCode        *string           `json:"analysisCode,omitempty"`
	PanelCode           string            `json:"panelCode,omitempty"`
	Experiment          *Experiment       `json:"experiment"`
	Workflow            *Workflow         `json:"workflow"`
}

type Patient struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Sex          string `json:"sex"`
	RAMQ         string `json:"ramq,omitempty"`
	BirthDate    string `json:"birthDate"`
	MRN          string `json:"mrn,omitempty"`
	EP           string `json:"ep"`
	DesignFamily string `json:"designFamily,omitempty"`
	FamilyMember string `json:"familyMember"`
	FamilyID     string `json:"familyId,omitempty"`
	Status       string `json:"status"`
	Fetus        *bool  `json:"fetus"`
}

type Experiment struct {
	Platform             string `json:"platform"`
	SequencerID          string `json:"sequencerId"`
	RunName              string `json:"runName"`
	RunDate              string `json:"runDate"`
	RunAlias             string `json:"runAlias"`
	FlowcellID           string `json:"flowcellId"`
	IsPairedEnd          *bool  `json:"isPairedEnd"`
	FragmentSize         *int   `json:"fragmentSize"`
	ExperimentalStrategy string `json:"experimentalStrategy"`
	CaptureKit           string `json:"captureKit"`
	BaitDefinition       string `json:"baitDefinition"`
	Protocol             string `json:"protocol,omitempty"`
}

type Workflow struct {
	Name               string `json:"name"`
	Version            string `json:"version"`
	GenomeBuild        string `json:"genomeBuild"`
	GenomeBuildVersion string `json:"genomeBuildVersion,omitempty"`
	VEPVersion         string `json:"vepVersion,omitempty"`
}
