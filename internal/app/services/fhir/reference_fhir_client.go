package fhir

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/app/services/shared/metrics"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/exceptions"
	"qlinme-service/internal/pkg/fhir_dto"
	"qlinme-service/internal/pkg/utils"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	breakerConsecutiveFailures = 5
	breakerOpenTimeout         = 30 * time.Second
)

type referenceFhirClient struct {
	BaseUrl    string
	HttpClient *http.Client
	Breaker    *gobreaker.CircuitBreaker
	Limiter    *rate.Limiter
	Log        *zap.Logger
	Metrics    *metrics.Metrics
}

func NewReferenceFhirClient(baseUrl string, timeout time.Duration, requestsPerSecond, burst int, logger *zap.Logger, m *metrics.Metrics) contracts.ReferenceFhirClient {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if burst <= 0 {
		burst = 1
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "fhir",
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("referenceFhirClient circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &referenceFhirClient{
		BaseUrl:    baseUrl,
		HttpClient: &http.Client{Timeout: timeout},
		Breaker:    breaker,
		Limiter:    rate.NewLimiter(limit, burst),
		Log:        logger,
		Metrics:    m,
	}
}

func (c *referenceFhirClient) GetAnalysisCodeSystem(ctx context.Context) (*fhir_dto.CodeSystem, error) {
	var codeSystem fhir_dto.CodeSystem
	path := constvars.ResourceCodeSystem + "/" + constvars.FhirCodeSystemAnalysisRequestCode
	if err := c.get(ctx, constvars.ResourceCodeSystem, path, nil, &codeSystem); err != nil {
		return nil, err
	}
	return &codeSystem, nil
}

func (c *referenceFhirClient) FindOrganizations(ctx context.Context, count int) ([]fhir_dto.Organization, error) {
	query := url.Values{}
	query.Set("_count", strconv.Itoa(count))

	bundle, err := c.search(ctx, constvars.ResourceOrganization, query)
	if err != nil {
		return nil, err
	}

	organizations := make([]fhir_dto.Organization, 0, len(bundle.Entry))
	err = eachResource(bundle, constvars.ResourceOrganization, func(raw []byte) error {
		var organization fhir_dto.Organization
		if err := json.Unmarshal(raw, &organization); err != nil {
			return err
		}
		organizations = append(organizations, organization)
		return nil
	})
	if err != nil {
		return nil, exceptions.ErrDecodeResponse(err, constvars.ResourceOrganization)
	}
	return organizations, nil
}

// FindTasks returns one page of tasks and the bundle total.
func (c *referenceFhirClient) FindTasks(ctx context.Context, offset, count int) ([]fhir_dto.Task, int, error) {
	bundle, err := c.search(ctx, constvars.ResourceTask, pageQuery(offset, count))
	if err != nil {
		return nil, 0, err
	}

	tasks := make([]fhir_dto.Task, 0, len(bundle.Entry))
	err = eachResource(bundle, constvars.ResourceTask, func(raw []byte) error {
		var task fhir_dto.Task
		if err := json.Unmarshal(raw, &task); err != nil {
			return err
		}
		tasks = append(tasks, task)
		return nil
	})
	if err != nil {
		return nil, 0, exceptions.ErrDecodeResponse(err, constvars.ResourceTask)
	}
	return tasks, bundle.Total, nil
}

// FindPatientsWithPersons pages patients and includes the persons linking
// to them.
func (c *referenceFhirClient) FindPatientsWithPersons(ctx context.Context, offset, count int) ([]fhir_dto.Patient, []fhir_dto.Person, int, error) {
	query := pageQuery(offset, count)
	query.Set("_revinclude", constvars.ResourcePerson+":patient")

	bundle, err := c.search(ctx, constvars.ResourcePatient, query)
	if err != nil {
		return nil, nil, 0, err
	}

	var patients []fhir_dto.Patient
	var persons []fhir_dto.Person
	for _, entry := range bundle.Entry {
		var header fhir_dto.ResourceHeader
		if err := json.Unmarshal(entry.Resource, &header); err != nil {
			return nil, nil, 0, exceptions.ErrDecodeResponse(err, constvars.ResourcePatient)
		}
		switch header.ResourceType {
		case constvars.ResourcePatient:
			var patient fhir_dto.Patient
			if err := json.Unmarshal(entry.Resource, &patient); err != nil {
				return nil, nil, 0, exceptions.ErrDecodeResponse(err, constvars.ResourcePatient)
			}
			patients = append(patients, patient)
		case constvars.ResourcePerson:
			var person fhir_dto.Person
			if err := json.Unmarshal(entry.Resource, &person); err != nil {
				return nil, nil, 0, exceptions.ErrDecodeResponse(err, constvars.ResourcePerson)
			}
			persons = append(persons, person)
		}
	}
	return patients, persons, bundle.Total, nil
}

func pageQuery(offset, count int) url.Values {
	query := url.Values{}
	query.Set("_count", strconv.Itoa(count))
	query.Set("_offset", strconv.Itoa(offset))
	return query
}

// eachResource skips entries of other types, e.g. OperationOutcome entries
// some servers append to search results.
func eachResource(bundle *fhir_dto.FHIRBundle, resourceType string, fn func(raw []byte) error) error {
	for _, entry := range bundle.Entry {
		var header fhir_dto.ResourceHeader
		if err := json.Unmarshal(entry.Resource, &header); err != nil {
			return err
		}
		if header.ResourceType != resourceType {
			continue
		}
		if err := fn(entry.Resource); err != nil {
			return err
		}
	}
	return nil
}

func (c *referenceFhirClient) search(ctx context.Context, resource string, query url.Values) (*fhir_dto.FHIRBundle, error) {
	var bundle fhir_dto.FHIRBundle
	if err := c.get(ctx, resource, resource, query, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// get waits for the rate limiter and runs the request behind the circuit
// breaker.
func (c *referenceFhirClient) get(ctx context.Context, resource, path string, query url.Values, dest interface{}) error {
	requestID := utils.GetRequestID(ctx)

	target := c.BaseUrl + "/" + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	c.Log.Info("referenceFhirClient.get called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFhirResourceKey, resource),
		zap.String(constvars.LoggingFhirUrlKey, target),
	)

	if err := c.Limiter.Wait(ctx); err != nil {
		c.Metrics.ObserveFhirRequest(resource, "rate_limited")
		return exceptions.ErrSendHTTPRequest(err)
	}

	_, err := c.Breaker.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, resource, target, dest)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.Metrics.ObserveFhirRequest(resource, "circuit_open")
		c.Log.Error("referenceFhirClient.get circuit open",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingFhirResourceKey, resource),
		)
		return exceptions.ErrFHIRCircuitOpen(err, resource)
	}
	if err != nil {
		c.Metrics.ObserveFhirRequest(resource, "error")
		return err
	}
	c.Metrics.ObserveFhirRequest(resource, "success")
	return nil
}

func (c *referenceFhirClient) do(ctx context.Context, resource, target string, dest interface{}) error {
	requestID := utils.GetRequestID(ctx)

	req, err := http.NewRequestWithContext(ctx, constvars.MethodGet, target, nil)
	if err != nil {
		c.Log.Error("referenceFhirClient.do error creating HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationFHIRJSON)
	if token := utils.GetAuthToken(ctx); token != "" {
		req.Header.Set(constvars.HeaderAuthorization, constvars.AuthorizationBearerPrefix+token)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		c.Log.Error("referenceFhirClient.do error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return exceptions.ErrGetFHIRResource(err, resource)
		}

		issue := fmt.Errorf("unexpected status %d", resp.StatusCode)
		var outcome fhir_dto.OperationOutcome
		if json.Unmarshal(bodyBytes, &outcome) == nil && len(outcome.Issue) > 0 {
			issue = fmt.Errorf("%s", outcome.Issue[0].Diagnostics)
		}
		c.Log.Error("referenceFhirClient.do FHIR error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingFhirResourceKey, resource),
			zap.Int(constvars.LoggingStatusCodeKey, resp.StatusCode),
			zap.Error(issue),
		)
		return exceptions.ErrGetFHIRResource(issue, resource)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		c.Log.Error("referenceFhirClient.do error decoding response",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return exceptions.ErrDecodeResponse(err, resource)
	}
	return nil
}
