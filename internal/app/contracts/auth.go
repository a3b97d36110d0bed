package contracts

import (
	"context"
	"qlinme-service/internal/app/models"
)

type AuthUsecase interface {
	Login(ctx context.Context, email, password string) (*models.AuthToken, error)
}

type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*models.AuthClaims, error)
}
