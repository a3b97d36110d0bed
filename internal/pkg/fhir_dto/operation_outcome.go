package fhir_dto

type OperationOutcome struct {
	ResourceType string                  `json:"resourceType"`
	Issue        []OperationOutcomeIssue `json:"issue"`
}

type OperationOutcomeIssue struct {
	Severity    string           `json:"severity"`
	Code        string           `json:"code"`
	Diagnostics string           `json:"diagnostics,omitempty"`
	Details     *CodeableConcept `json:"details,omitempty"`
}
