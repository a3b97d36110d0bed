package fhir

import (
	"context"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/app/models"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/exceptions"
	"qlinme-service/internal/pkg/fhir_dto"
	"qlinme-service/internal/pkg/utils"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Bounds a shared fetch, it no longer follows any single caller.
const defaultFetchTimeout = 2 * time.Minute

type referenceDataService struct {
	FhirClient       contracts.ReferenceFhirClient
	Cache            contracts.TimedCache
	WorkflowVersions []string
	FetchTimeout     time.Duration
	Log              *zap.Logger
	flights          singleflight.Group
}

func NewReferenceDataService(fhirClient contracts.ReferenceFhirClient, cache contracts.TimedCache, workflowVersions []string, logger *zap.Logger) contracts.ReferenceDataService {
	return &referenceDataService{
		FhirClient:       fhirClient,
		Cache:            cache,
		WorkflowVersions: workflowVersions,
		FetchTimeout:     defaultFetchTimeout,
		Log:              logger,
	}
}

// Load fetches every reference list concurrently into one snapshot.
func (s *referenceDataService) Load(ctx context.Context, allowCache bool) (*models.ReferenceData, error) {
	reference := &models.ReferenceData{WorkflowVersions: s.WorkflowVersions}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		panelCodes, err := s.GetPanelCodes(gctx, allowCache)
		reference.PanelCodes = panelCodes
		return err
	})
	g.Go(func() error {
		organizations, err := s.GetOrganizations(gctx, allowCache)
		reference.Organizations = organizations
		return err
	})
	g.Go(func() error {
		identifiers, err := s.GetBatchIdentifiers(gctx, allowCache)
		if identifiers != nil {
			reference.AliquotIDsByBatch = identifiers.AliquotIDsByBatch
			reference.ServiceRequestIDsByBatch = identifiers.ServiceRequestIDsByBatch
		}
		return err
	})
	g.Go(func() error {
		patients, err := s.GetPatients(gctx, allowCache)
		reference.Patients = patients
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.Log.Info("referenceDataService.Load succeeded",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.Int(constvars.LoggingFhirCountKey, len(reference.PanelCodes)+len(reference.Organizations)+len(reference.Patients)),
		zap.Bool(constvars.LoggingAllowCacheKey, allowCache),
	)
	return reference, nil
}

func (s *referenceDataService) GetPanelCodes(ctx context.Context, allowCache bool) ([]string, error) {
	return cached(ctx, s, constvars.CacheKeyFhirPanels, allowCache, func(ctx context.Context) ([]string, error) {
		codeSystem, err := s.FhirClient.GetAnalysisCodeSystem(ctx)
		if err != nil {
			return nil, err
		}
		panelCodes := make([]string, 0, len(codeSystem.Concept))
		for _, concept := range codeSystem.Concept {
			if !utils.Contains(constvars.FhirIgnoredPanelCodes, concept.Code) {
				panelCodes = append(panelCodes, concept.Code)
			}
		}
		sort.Strings(panelCodes)
		return panelCodes, nil
	})
}

func (s *referenceDataService) GetOrganizations(ctx context.Context, allowCache bool) ([]string, error) {
	return cached(ctx, s, constvars.CacheKeyFhirOrganizations, allowCache, func(ctx context.Context) ([]string, error) {
		organizations, err := s.FhirClient.FindOrganizations(ctx, constvars.FhirOrganizationsCount)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(organizations))
		for _, organization := range organizations {
			ids = append(ids, organization.ID)
		}
		sort.Strings(ids)
		return ids, nil
	})
}

// GetBatchIdentifiers walks every task page, tasks carry the aliquot and
// service request ids of the batch that created them.
func (s *referenceDataService) GetBatchIdentifiers(ctx context.Context, allowCache bool) (*models.BatchIdentifiers, error) {
	return cached(ctx, s, constvars.CacheKeyFhirAliquotIDs, allowCache, func(ctx context.Context) (*models.BatchIdentifiers, error) {
		identifiers := &models.BatchIdentifiers{
			AliquotIDsByBatch:        make(map[string][]string),
			ServiceRequestIDsByBatch: make(map[string][]string),
		}
		for offset := 0; ; offset += constvars.FhirTasksPageSize {
			tasks, _, err := s.FhirClient.FindTasks(ctx, offset, constvars.FhirTasksPageSize)
			if err != nil {
				return nil, err
			}
			if len(tasks) == 0 {
				break
			}
			for _, task := range tasks {
				batchID := task.BatchID()
				if utils.IsBlank(batchID) {
					continue
				}
				if aliquotID := task.SequencingExperimentValue(constvars.FhirSequencingExperimentExtension, constvars.FhirExtensionLabAliquotID); !utils.IsBlank(aliquotID) {
					identifiers.AliquotIDsByBatch[batchID] = append(identifiers.AliquotIDsByBatch[batchID], aliquotID)
				}
				if serviceRequestID := task.SequencingExperimentValue(constvars.FhirSequencingExperimentExtension, constvars.FhirExtensionServiceRequestID); !utils.IsBlank(serviceRequestID) {
					identifiers.ServiceRequestIDsByBatch[batchID] = append(identifiers.ServiceRequestIDsByBatch[batchID], serviceRequestID)
				}
			}
		}
		return identifiers, nil
	})
}

func (s *referenceDataService) GetPatients(ctx context.Context, allowCache bool) ([]models.Patient, error) {
	return cached(ctx, s, constvars.CacheKeyFhirPatients, allowCache, func(ctx context.Context) ([]models.Patient, error) {
		patients := make([]models.Patient, 0)
		for offset := 0; ; offset += constvars.FhirPatientsPageSize {
			page, persons, _, err := s.FhirClient.FindPatientsWithPersons(ctx, offset, constvars.FhirPatientsPageSize)
			if err != nil {
				return nil, err
			}
			if len(page) == 0 {
				break
			}
			for _, patient := range page {
				patients = append(patients, toKnownPatient(patient, persons))
			}
		}
		return patients, nil
	})
}

// toKnownPatient takes demographics from the linked person and the medical
// record number from the patient itself.
func toKnownPatient(patient fhir_dto.Patient, persons []fhir_dto.Person) models.Patient {
	var person fhir_dto.Person
	for _, candidate := range persons {
		if candidate.LinksTo(constvars.FhirPatientReferencePrefix + patient.ID) {
			person = candidate
			break
		}
	}

	known := models.Patient{
		FirstName: person.GivenName(),
		LastName:  person.FamilyName(),
		Sex:       person.Gender,
		RAMQ:      person.IdentifierValue(constvars.FhirIdentifierTypeJHN),
		MRN:       patient.IdentifierValue(constvars.FhirIdentifierTypeMR),
	}
	if birthDate, err := time.Parse(constvars.FhirDateFormat, person.BirthDate); err == nil {
		known.BirthDate = utils.FormatDate(birthDate, constvars.DateFormatDMY)
	}
	if patient.ManagingOrganization != nil {
		known.EP = strings.TrimPrefix(patient.ManagingOrganization.Reference, constvars.FhirOrganizationReferencePrefix)
	}
	return known
}

// cached serves key from the cache when allowed and collapses concurrent
// fetches of the same key into one remote call. The shared call is detached
// from the caller that started it, a caller leaving early only stops waiting.
func cached[T any](ctx context.Context, s *referenceDataService, key string, allowCache bool, fetch func(ctx context.Context) (T, error)) (T, error) {
	requestID := utils.GetRequestID(ctx)

	results := s.flights.DoChan(key+"|"+strconv.FormatBool(allowCache), func() (interface{}, error) {
		timeout := s.FetchTimeout
		if timeout <= 0 {
			timeout = defaultFetchTimeout
		}
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		var value T
		if allowCache {
			found, err := s.Cache.Get(ctx, key, &value)
			if err != nil {
				s.Log.Warn("referenceDataService cache read failed",
					zap.String(constvars.LoggingRequestIDKey, requestID),
					zap.String(constvars.LoggingCacheKey, key),
					zap.Error(err),
				)
			}
			if found {
				s.Log.Debug("referenceDataService served from cache",
					zap.String(constvars.LoggingRequestIDKey, requestID),
					zap.String(constvars.LoggingCacheKey, key),
					zap.Bool(constvars.LoggingCacheHitKey, true),
				)
				return value, nil
			}
		}

		value, err := fetch(ctx)
		if err != nil {
			return value, exceptions.ErrReferenceDataUnavailable(err, key)
		}
		if err := s.Cache.Put(ctx, key, value); err != nil {
			s.Log.Warn("referenceDataService cache write failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingCacheKey, key),
				zap.Error(err),
			)
		}
		s.Log.Info("referenceDataService fetched",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingCacheKey, key),
		)
		return value, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		s.Log.Warn("referenceDataService lookup abandoned",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingCacheKey, key),
			zap.Error(ctx.Err()),
		)
		return zero, ctx.Err()
	case result := <-results:
		s.Log.Debug("referenceDataService lookup",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingCacheKey, key),
			zap.Bool("shared", result.Shared),
		)
		if result.Err != nil {
			return zero, result.Err
		}
		return result.Val.(T), nil
	}
}
