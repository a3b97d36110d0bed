package jwtmanager

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/http"
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

const (
	algRS256 = "RS256"
	// unknown kids trigger a refetch at most this often
	minKeysRefreshInterval = 30 * time.Second
)

type keycloakClaims struct {
	jwt.RegisteredClaims
	AuthorizedParty string `json:"azp,omitempty"`
	RealmAccess     struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

type jsonWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKSVerifier checks RS256 tokens against the signing keys published by
// the realm.
type JWKSVerifier struct {
	log          *zap.Logger
	issuer       string
	audience     string
	systemClient string
	certsUrl     string
	httpClient   *http.Client
	now          func() time.Time

	mu          sync.RWMutex
	keys        map[string]*rsa.PublicKey
	lastFetched time.Time
}

var _ contracts.TokenVerifier = (*JWKSVerifier)(nil)

func NewJWKSVerifier(issuer, audience, systemClient string, timeout time.Duration, log *zap.Logger) *JWKSVerifier {
	return &JWKSVerifier{
		log:          log,
		issuer:       issuer,
		audience:     audience,
		systemClient: systemClient,
		certsUrl:     strings.TrimSuffix(issuer, "/") + constvars.KeycloakCertsPath,
		httpClient:   &http.Client{Timeout: timeout},
		now:          time.Now,
		keys:         make(map[string]*rsa.PublicKey),
	}
}

// Verify validates signature, expiry, issuer and audience, then returns the
// clin roles of the token.
func (v *JWKSVerifier) Verify(ctx context.Context, rawToken string) (*models.AuthClaims, error) {
	requestID := utils.GetRequestID(ctx)

	if strings.TrimSpace(rawToken) == "" {
		return nil, exceptions.ErrTokenMissing(nil)
	}

	var keyErr error
	keyFunc := func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != algRS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		key, err := v.key(ctx, kid)
		if err != nil {
			keyErr = err
			return nil, err
		}
		return key, nil
	}

	claims := &keycloakClaims{}
	parsed, err := jwt.ParseWithClaims(rawToken, claims, keyFunc)
	if keyErr != nil {
		return nil, keyErr
	}
	if err != nil || !parsed.Valid {
		v.log.Warn("JWKSVerifier.Verify invalid token",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrTokenInvalidOrExpired(err)
	}
	if !claims.VerifyIssuer(v.issuer, true) {
		return nil, exceptions.ErrTokenInvalidOrExpired(fmt.Errorf("unexpected issuer %s", claims.Issuer))
	}
	if !claims.VerifyAudience(v.audience, true) {
		return nil, exceptions.ErrTokenInvalidOrExpired(fmt.Errorf("audience %s missing", v.audience))
	}

	roles := v.roles(claims)
	v.log.Debug("JWKSVerifier.Verify succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSubjectKey, claims.Subject),
		zap.Strings(constvars.LoggingRolesKey, roles),
	)
	return &models.AuthClaims{Subject: claims.Subject, Roles: roles}, nil
}

// roles keeps the clin realm roles; the system client is granted the service
// role.
func (v *JWKSVerifier) roles(claims *keycloakClaims) []string {
	roles := append([]string(nil), claims.RealmAccess.Roles...)
	if v.systemClient != "" && claims.AuthorizedParty == v.systemClient {
		roles = append(roles, constvars.RoleQlinMe)
	}

	result := make([]string, 0, len(roles))
	for _, role := range roles {
		if strings.HasPrefix(role, constvars.RolePrefixClin) && !utils.Contains(result, role) {
			result = append(result, role)
		}
	}
	return result
}

func (v *JWKSVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	lastFetched := v.lastFetched
	v.mu.RUnlock()
	if ok {
		return key, nil
	}

	if !lastFetched.IsZero() && v.now().Sub(lastFetched) < minKeysRefreshInterval {
		return nil, exceptions.ErrUnknownSigningKey(nil, kid)
	}
	if err := v.refresh(ctx); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	if key, ok := v.keys[kid]; ok {
		return key, nil
	}
	return nil, exceptions.ErrUnknownSigningKey(nil, kid)
}

func (v *JWKSVerifier) refresh(ctx context.Context) error {
	requestID := utils.GetRequestID(ctx)
	v.log.Info("JWKSVerifier.refresh called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("certs_url", v.certsUrl),
	)

	req, err := http.NewRequestWithContext(ctx, constvars.MethodGet, v.certsUrl, nil)
	if err != nil {
		return exceptions.ErrCreateHTTPRequest(err)
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return exceptions.ErrFetchSigningKeys(err, v.certsUrl)
	}
	defer resp.Body.Close()
	if resp.StatusCode != constvars.StatusOK {
		return exceptions.ErrFetchSigningKeys(fmt.Errorf("status %d", resp.StatusCode), v.certsUrl)
	}

	var set struct {
		Keys []jsonWebKey `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return exceptions.ErrFetchSigningKeys(err, v.certsUrl)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, jwk := range set.Keys {
		if jwk.Kty != "RSA" || (jwk.Use != "" && jwk.Use != "sig") {
			continue
		}
		key, err := rsaPublicKey(jwk)
		if err != nil {
			v.log.Warn("JWKSVerifier.refresh skipping key",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingKeyIDKey, jwk.Kid),
				zap.Error(err),
			)
			continue
		}
		keys[jwk.Kid] = key
	}

	v.mu.Lock()
	v.keys = keys
	v.lastFetched = v.now()
	v.mu.Unlock()
	return nil
}

func rsaPublicKey(jwk jsonWebKey) (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	e, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}
	exponent := new(big.Int).SetBytes(e)
	if !exponent.IsInt64() || exponent.Int64() > int64(^uint32(0)>>1) {
		return nil, fmt.Errorf("exponent out of range")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: int(exponent.Int64())}, nil
}
