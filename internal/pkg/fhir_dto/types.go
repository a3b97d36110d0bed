package fhir_dto

import "time"

type Reference struct {
	Reference string `json:"reference,omitempty"`
	Type      string `json:"type,omitempty"`
	Display   string `json:"display,omitempty"`
}

type Identifier struct {
	Use    string           `json:"use,omitempty"`
	System string           `json:"system,omitempty"`
	Value  string           `json:"value,omitempty"`
	Type   *CodeableConcept `json:"type,omitempty"`
}

// TypeCode returns the first coding code of the identifier type.
func (i Identifier) TypeCode() string {
	if i.Type == nil || len(i.Type.Coding) == 0 {
		return ""
	}
	return i.Type.Coding[0].Code
}

type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

type Coding struct {
	System  string `json:"system,omitempty"`
	Version string `json:"version,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

type HumanName struct {
	Use    string   `json:"use,omitempty"`
	Text   string   `json:"text,omitempty"`
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
}

type Meta struct {
	VersionId   string     `json:"versionId,omitempty"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
	Profile     []string   `json:"profile,omitempty"`
}

type Extension struct {
	Url             string      `json:"url,omitempty"`
	ValueString     string      `json:"valueString,omitempty"`
	ValueCode       string      `json:"valueCode,omitempty"`
	ValueId         string      `json:"valueId,omitempty"`
	ValueIdentifier *Identifier `json:"valueIdentifier,omitempty"`
	Extension       []Extension `json:"extension,omitempty"`
}

// StringValue returns whichever primitive value the extension carries.
func (e Extension) StringValue() string {
	switch {
	case e.ValueString != "":
		return e.ValueString
	case e.ValueCode != "":
		return e.ValueCode
	case e.ValueId != "":
		return e.ValueId
	case e.ValueIdentifier != nil:
		return e.ValueIdentifier.Value
	}
	return ""
}

func FindExtension(extensions []Extension, url string) (Extension, bool) {
	for _, extension := range extensions {
		if extension.Url == url {
			return extension, true
		}
	}
	return Extension{}, false
}
