package models

// ReferenceData is the read-only snapshot the metadata validator checks a
// document against.
type ReferenceData struct {
	PanelCodes               []string
	Organizations            []string
	AliquotIDsByBatch        map[string][]string
	ServiceRequestIDsByBatch map[string][]string
	Patients                 []Patient
	WorkflowVersions         []string
}

// BatchIdentifiers is what the clinical data provider knows about one batch.
type BatchIdentifiers struct {
	AliquotIDsByBatch        map[string][]string `json:"aliquotIdsByBatch"`
	ServiceRequestIDsByBatch map[string][]string `json:"serviceRequestIdsByBatch"`
}
