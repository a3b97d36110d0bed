package controllers

import (
	"context"
	"errors"
	"net/http"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/dto/requests"
	"qlinme-service/internal/pkg/exceptions"
	"qlinme-service/internal/pkg/utils"
	"sync"
	"time"

	"go.uber.org/zap"
)

type AuthController struct {
	Log            *zap.Logger
	AuthUsecase    contracts.AuthUsecase
	RequestTimeout time.Duration
}

var (
	authControllerInstance *AuthController
	onceAuthController     sync.Once
)

func NewAuthController(logger *zap.Logger, authUsecase contracts.AuthUsecase, requestTimeout time.Duration) *AuthController {
	onceAuthController.Do(func() {
		authControllerInstance = &AuthController{
			Log:            logger,
			AuthUsecase:    authUsecase,
			RequestTimeout: requestTimeout,
		}
	})
	return authControllerInstance
}

func (ctrl *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	ctrl.Log.Info("AuthController.Login called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	request := requests.Login{
		Email:    r.URL.Query().Get(constvars.QueryParamEmail),
		Password: r.URL.Query().Get(constvars.QueryParamPassword),
	}
	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.RequestTimeout)
	defer cancel()

	token, err := ctrl.AuthUsecase.Login(ctx, request.Email, request.Password)
	if err != nil {
		ctrl.Log.Error("AuthController.Login error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		if errors.Is(err, context.DeadlineExceeded) {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.LoginSuccessMessage, token)
}
