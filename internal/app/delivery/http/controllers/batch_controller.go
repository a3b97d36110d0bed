package controllers

import (
	"context"
	"errors"
	"net/http"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/app/models"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/dto/requests"
	"qlinme-service/internal/pkg/exceptions"
	"qlinme-service/internal/pkg/utils"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type BatchController struct {
	Log            *zap.Logger
	BatchUsecase   contracts.BatchUsecase
	RequestTimeout time.Duration
}

var (
	batchControllerInstance *BatchController
	onceBatchController     sync.Once
)

func NewBatchController(logger *zap.Logger, batchUsecase contracts.BatchUsecase, requestTimeout time.Duration) *BatchController {
	onceBatchController.Do(func() {
		batchControllerInstance = &BatchController{
			Log:            logger,
			BatchUsecase:   batchUsecase,
			RequestTimeout: requestTimeout,
		}
	})
	return batchControllerInstance
}

func (ctrl *BatchController) GetBatch(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	params, err := ctrl.batchParams(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	ctrl.Log.Info("BatchController.GetBatch called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBatchIDKey, params.BatchID),
	)

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.RequestTimeout)
	defer cancel()

	metadata, err := ctrl.BatchUsecase.GetBatch(ctx, params.BatchID)
	if err != nil {
		ctrl.fail(w, "GetBatch", requestID, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.BatchFoundSuccessMessage, metadata)
}

func (ctrl *BatchController) CreateOrUpdateBatch(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	params, err := ctrl.batchParams(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	ctrl.Log.Info("BatchController.CreateOrUpdateBatch called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBatchIDKey, params.BatchID),
	)

	var metadata models.Metadata
	if err := json.NewDecoder(r.Body).Decode(&metadata); err != nil {
		ctrl.Log.Warn("BatchController.CreateOrUpdateBatch error decoding body",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.RequestTimeout)
	defer cancel()

	saved, report, err := ctrl.BatchUsecase.CreateOrUpdateBatch(ctx, params.BatchID, &metadata, params.AllowCache)
	if err != nil {
		ctrl.fail(w, "CreateOrUpdateBatch", requestID, err)
		return
	}
	if saved == nil {
		utils.BuildValidationFailedResponse(w, constvars.BatchInvalidMessage, report)
		return
	}

	ctrl.Log.Info("BatchController.CreateOrUpdateBatch succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBatchIDKey, params.BatchID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.BatchSavedSuccessMessage, saved)
}

func (ctrl *BatchController) GetBatchStatus(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	params, err := ctrl.batchParams(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	ctrl.Log.Info("BatchController.GetBatchStatus called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBatchIDKey, params.BatchID),
		zap.Bool(constvars.LoggingAllowCacheKey, params.AllowCache),
	)

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.RequestTimeout)
	defer cancel()

	status, err := ctrl.BatchUsecase.GetBatchStatus(ctx, params.BatchID, params.AllowCache)
	if err != nil {
		ctrl.fail(w, "GetBatchStatus", requestID, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.BatchStatusSuccessMessage, status)
}

func (ctrl *BatchController) ListBatchHistory(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	params, err := ctrl.batchParams(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.RequestTimeout)
	defer cancel()

	versions, err := ctrl.BatchUsecase.ListBatchHistory(ctx, params.BatchID)
	if err != nil {
		ctrl.fail(w, "ListBatchHistory", requestID, err)
		return
	}
	ctrl.Log.Info("BatchController.ListBatchHistory succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBatchIDKey, params.BatchID),
		zap.Int(constvars.LoggingObjectCountKey, len(versions)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.BatchHistorySuccessMessage, versions)
}

func (ctrl *BatchController) GetBatchHistoryVersion(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	params := requests.BatchVersionParams{
		BatchID: chi.URLParam(r, constvars.URLParamBatchID),
		Version: chi.URLParam(r, constvars.URLParamVersion),
	}
	if err := utils.ValidateStruct(params); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.RequestTimeout)
	defer cancel()

	metadata, err := ctrl.BatchUsecase.GetBatchHistoryVersion(ctx, params.BatchID, params.Version)
	if err != nil {
		ctrl.fail(w, "GetBatchHistoryVersion", requestID, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.BatchHistoryVersionFoundMessage, metadata)
}

// batchParams reads batch_id and allowCache, which defaults to true.
func (ctrl *BatchController) batchParams(r *http.Request) (*requests.BatchParams, error) {
	params := &requests.BatchParams{
		BatchID:    chi.URLParam(r, constvars.URLParamBatchID),
		AllowCache: true,
	}
	if raw := r.URL.Query().Get(constvars.QueryParamAllowCache); raw != "" {
		allowCache, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, exceptions.ErrURLParamValidation(err, constvars.QueryParamAllowCache)
		}
		params.AllowCache = allowCache
	}
	if err := utils.ValidateStruct(params); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}
	return params, nil
}

func (ctrl *BatchController) fail(w http.ResponseWriter, method, requestID string, err error) {
	ctrl.Log.Error("BatchController."+method+" error from usecase",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Error(err),
	)
	if errors.Is(err, context.DeadlineExceeded) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
		return
	}
	utils.BuildErrorResponse(ctrl.Log, w, err)
}
