package middleware

import (
	"context"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/pkg/logger"
)

type (
	TokenValidator interface {
		Validate(ctx context.Context, token string) (*models.User, error)
	}

	Middleware struct {
		tokens TokenValidator
		log    logger.Logger
	}
)

func NewMiddleware(tokens TokenValidator, log logger.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		log:    log,
	}
}
