package fhir_dto

import "encoding/json"

type FHIRBundle struct {
	ResourceType string       `json:"resourceType"`
	ID           string       `json:"id"`
	Type         string       `json:"type"`
	Total        int          `json:"total"`
	Link         []BundleLink `json:"link,omitempty"`
	Entry        []Entry      `json:"entry"`
}

type BundleLink struct {
	Relation string `json:"relation"`
	Url      string `json:"url"`
}

type Entry struct {
	FullUrl  string          `json:"fullUrl,omitempty"`
	Resource json.RawMessage `json:"resource"`
}

// ResourceHeader is decoded first to dispatch an entry on its type.
type ResourceHeader struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id"`
}
