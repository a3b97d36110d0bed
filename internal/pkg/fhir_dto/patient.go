package fhir_dto

type Patient struct {
	ID                   string       `json:"id,omitempty"`
	ResourceType         string       `json:"resourceType,omitempty"`
	Active               bool         `json:"active,omitempty"`
	Name                 []HumanName  `json:"name,omitempty"`
	Gender               string       `json:"gender,omitempty"`
	BirthDate            string       `json:"birthDate,omitempty"`
	Identifier           []Identifier `json:"identifier"`
	ManagingOrganization *Reference   `json:"managingOrganization,omitempty"`
}

// IdentifierValue returns the value of the first identifier typed code.
func (p Patient) IdentifierValue(code string) string {
	return identifierValue(p.Identifier, code)
}

func identifierValue(identifiers []Identifier, code string) string {
	for _, identifier := range identifiers {
		if identifier.TypeCode() == code {
			return identifier.Value
		}
	}
	return ""
}
