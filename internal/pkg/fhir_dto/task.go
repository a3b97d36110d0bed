package fhir_dto

type Task struct {
	ResourceType    string      `json:"resourceType,omitempty"`
	ID              string      `json:"id,omitempty"`
	Status          string      `json:"status,omitempty"`
	Intent          string      `json:"intent,omitempty"`
	GroupIdentifier *Identifier `json:"groupIdentifier,omitempty"`
	Focus           *Reference  `json:"focus,omitempty"`
	For             *Reference  `json:"for,omitempty"`
	Extension       []Extension `json:"extension,omitempty"`
}

// BatchID is the submission batch the task was created for.
func (t Task) BatchID() string {
	if t.GroupIdentifier == nil {
		return ""
	}
	return t.GroupIdentifier.Value
}

// SequencingExperimentValue reads a sub extension of the sequencing
// experiment extension.
func (t Task) SequencingExperimentValue(experimentUrl, url string) string {
	experiment, ok := FindExtension(t.Extension, experimentUrl)
	if !ok {
		return ""
	}
	value, ok := FindExtension(experiment.Extension, url)
	if !ok {
		return ""
	}
	return value.StringValue()
}
