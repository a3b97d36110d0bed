package fhir_dto

import "strings"

type Person struct {
	ResourceType string       `json:"resourceType"`
	ID           string       `json:"id,omitempty"`
	Active       bool         `json:"active,omitempty"`
	Name         []HumanName  `json:"name,omitempty"`
	Gender       string       `json:"gender,omitempty"`
	BirthDate    string       `json:"birthDate,omitempty"`
	Identifier   []Identifier `json:"identifier"`
	Link         []PersonLink `json:"link,omitempty"`
}

type PersonLink struct {
	Target    Reference `json:"target"`
	Assurance string    `json:"assurance,omitempty"`
}

func (p Person) IdentifierValue(code string) string {
	return identifierValue(p.Identifier, code)
}

// GivenName joins the given names of the first name entry.
func (p Person) GivenName() string {
	if len(p.Name) == 0 {
		return ""
	}
	return strings.Join(p.Name[0].Given, " ")
}

func (p Person) FamilyName() string {
	if len(p.Name) == 0 {
		return ""
	}
	return p.Name[0].Family
}

func (p Person) LinksTo(reference string) bool {
	for _, link := range p.Link {
		if link.Target.Reference == reference {
			return true
		}
	}
	return false
}
