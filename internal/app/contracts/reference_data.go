package contracts

import (
	"context"
	"qlinme-service/internal/app/models"
	"qlinme-service/internal/pkg/fhir_dto"
)

// ReferenceFhirClient reads the clinical data provider. Calls forward the
// caller token found in ctx.
type ReferenceFhirClient interface {
	GetAnalysisCodeSystem(ctx context.Context) (*fhir_dto.CodeSystem, error)
	FindOrganizations(ctx context.Context, count int) ([]fhir_dto.Organization, error)
	FindTasks(ctx context.Context, offset, count int) ([]fhir_dto.Task, int, error)
	FindPatientsWithPersons(ctx context.Context, offset, count int) ([]fhir_dto.Patient, []fhir_dto.Person, int, error)
}

type ReferenceDataService interface {
	GetPanelCodes(ctx context.Context, allowCache bool) ([]string, error)
	GetOrganizations(ctx context.Context, allowCache bool) ([]string, error)
	GetBatchIdentifiers(ctx context.Context, allowCache bool) (*models.BatchIdentifiers, error)
	GetPatients(ctx context.Context, allowCache bool) ([]models.Patient, error)
	Load(ctx context.Context, allowCache bool) (*models.ReferenceData, error)
}
