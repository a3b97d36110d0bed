package constvars

const (
	ResourceCodeSystem   = "CodeSystem"
	ResourceOrganization = "Organization"
	ResourceTask         = "Task"
	ResourcePatient      = "Patient"
	ResourcePerson       = "Person"
)

const (
	FhirCodeSystemAnalysisRequestCode = "analysis-request-code"
	FhirSequencingExperimentExtension = "http://fhir.cqgc.ferlab.bio/StructureDefinition/sequencing-experiment"
	FhirExtensionLabAliquotID         = "labAliquotId"
	FhirExtensionServiceRequestID     = "ldmServiceRequestId"
	FhirIdentifierTypeMR              = "MR"
	FhirIdentifierTypeJHN             = "JHN"
	FhirOrganizationReferencePrefix   = "Organization/"
	FhirPatientReferencePrefix        = "Patient/"
	FhirDateFormat                    = "2006-01-02"

	FhirOrganizationsCount = 100
	FhirTasksPageSize      = 100
	FhirPatientsPageSize   = 50
)

var FhirIgnoredPanelCodes = []string{"EXTUM", "RGDI+", "SCID", "SHEMA", "SSOLID", "TRATU", ""}

const (
	CacheKeyFhirPanels        = "fhir.panels"
	CacheKeyFhirOrganizations = "fhir.organizations"
	CacheKeyFhirAliquotIDs    = "fhir.aliquotids"
	CacheKeyFhirPatients      = "fhir.patients"
)

const (
	KeycloakTokenPath       = "/protocol/openid-connect/token"
	KeycloakCertsPath       = "/protocol/openid-connect/certs"
	KeycloakGrantPassword   = "password"
	KeycloakGrantUMATicket  = "urn:ietf:params:oauth:grant-type:uma-ticket"
	KeycloakClaimRealmRoles = "realm_access"
)
