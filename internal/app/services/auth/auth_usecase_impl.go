package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/app/models"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/exceptions"
	"qlinme-service/internal/pkg/utils"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

type authUsecase struct {
	TokenUrl   string
	Client     string
	Audience   string
	HttpClient *http.Client
	Log        *zap.Logger
}

var (
	authUsecaseInstance contracts.AuthUsecase
	onceAuthUsecase     sync.Once
)

// NewAuthUsecase logs users in against the realm issuer.
func NewAuthUsecase(issuer, client, audience string, timeout time.Duration, logger *zap.Logger) contracts.AuthUsecase {
	onceAuthUsecase.Do(func() {
		authUsecaseInstance = newAuthUsecase(issuer, client, audience, timeout, logger)
	})
	return authUsecaseInstance
}

func newAuthUsecase(issuer, client, audience string, timeout time.Duration, logger *zap.Logger) *authUsecase {
	return &authUsecase{
		TokenUrl:   strings.TrimSuffix(issuer, "/") + constvars.KeycloakTokenPath,
		Client:     client,
		Audience:   audience,
		HttpClient: &http.Client{Timeout: timeout},
		Log:        logger,
	}
}

type keycloakTokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Login exchanges the user credentials for an access token, then the access
// token for a requesting party token carrying the audience permissions.
func (uc *authUsecase) Login(ctx context.Context, email, password string) (*models.AuthToken, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("authUsecase.Login called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	accessToken, err := uc.requestToken(ctx, constvars.KeycloakGrantPassword, url.Values{
		"client_id":  {uc.Client},
		"grant_type": {constvars.KeycloakGrantPassword},
		"username":   {email},
		"password":   {password},
	}, "")
	if err != nil {
		return nil, err
	}

	rpt, err := uc.requestToken(ctx, constvars.KeycloakGrantUMATicket, url.Values{
		"audience":   {uc.Audience},
		"grant_type": {constvars.KeycloakGrantUMATicket},
	}, accessToken)
	if err != nil {
		return nil, err
	}

	token, err := describeToken(rpt)
	if err != nil {
		return nil, exceptions.ErrKeycloakRequest(err, constvars.KeycloakGrantUMATicket)
	}

	uc.Log.Info("authUsecase.Login succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64("expires_at", token.ExpiresAt),
	)
	return token, nil
}

func (uc *authUsecase) requestToken(ctx context.Context, grant string, form url.Values, bearer string) (string, error) {
	requestID := utils.GetRequestID(ctx)

	req, err := http.NewRequestWithContext(ctx, constvars.MethodPost, uc.TokenUrl, strings.NewReader(form.Encode()))
	if err != nil {
		return "", exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationForm)
	if bearer != "" {
		req.Header.Set(constvars.HeaderAuthorization, constvars.AuthorizationBearerPrefix+bearer)
	}

	resp, err := uc.HttpClient.Do(req)
	if err != nil {
		uc.Log.Error("authUsecase.requestToken error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String("grant", grant),
			zap.Error(err),
		)
		return "", exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK {
		statusErr := fmt.Errorf("keycloak answered %d", resp.StatusCode)
		uc.Log.Warn("authUsecase.requestToken rejected",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String("grant", grant),
			zap.Int(constvars.LoggingStatusCodeKey, resp.StatusCode),
		)
		if resp.StatusCode == constvars.StatusUnauthorized || resp.StatusCode == constvars.StatusBadRequest {
			return "", exceptions.ErrInvalidUsernameOrPassword(statusErr)
		}
		return "", exceptions.ErrKeycloakRequest(statusErr, grant)
	}

	var body keycloakTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", exceptions.ErrDecodeResponse(err, grant)
	}
	if body.AccessToken == "" {
		return "", exceptions.ErrKeycloakRequest(fmt.Errorf("empty access_token"), grant)
	}
	return body.AccessToken, nil
}

// describeToken reads exp and iat without verifying, the token was just
// issued to us by the realm.
func describeToken(raw string) (*models.AuthToken, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, err
	}
	expiresAt, ok := claims["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("token has no exp claim")
	}
	issuedAt, _ := claims["iat"].(float64)
	return &models.AuthToken{
		AccessToken: raw,
		ExpiresAt:   int64(expiresAt),
		Duration:    int64(expiresAt - issuedAt),
	}, nil
}
