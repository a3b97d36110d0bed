package contracts

import (
	"context"
	"qlinme-service/internal/app/models"
)

type BatchEventPublisher interface {
	Publish(ctx context.Context, event *models.BatchEvent) error
}
