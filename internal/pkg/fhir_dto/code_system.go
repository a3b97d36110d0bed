package fhir_dto

type CodeSystem struct {
	ResourceType string              `json:"resourceType"`
	ID           string              `json:"id,omitempty"`
	Url          string              `json:"url,omitempty"`
	Status       string              `json:"status,omitempty"`
	Concept      []CodeSystemConcept `json:"concept,omitempty"`
}

type CodeSystemConcept struct {
	Code    string `json:"code"`
	Display string `json:"display,omitempty"`
}
