package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/internal/domain/types"
	"github.com/Zubra14/verista-tracking/pkg/logger"
	wrap "github.com/Zubra14/verista-tracking/pkg/logger/wrapper"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// TokenService signs and validates HS256 access tokens. The tracking
// service does not own user accounts; tokens are issued by the identity
// service and verified here with the shared secret.
type TokenService struct {
	secret    string
	accessTTL time.Duration
	log       logger.Logger
}

func NewTokenService(secret string, accessTTL time.Duration, log logger.Logger) *TokenService {
	return &TokenService{
		secret:    secret,
		accessTTL: accessTTL,
		log:       log,
	}
}

// Issue signs an access token for the user. Used by the simulator and
// by tests; production tokens come from the identity service.
func (s *TokenService) Issue(user *models.User) (string, error) {
	if user == nil {
		return "", errors.New("user is nil")
	}

	issuedAt := time.Now().UTC()
	claims := jwt.MapClaims{
		"jti":     uuid.New().String(),
		"user_id": user.ID.String(),
		"role":    user.Role.String(),
		"iat":     issuedAt.Unix(),
		"exp":     issuedAt.Add(s.accessTTL).Unix(),
	}
	if user.SchoolID != nil {
		claims["school_id"] = user.SchoolID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Validate parses the token and returns the user it identifies.
func (s *TokenService) Validate(ctx context.Context, tokenString string) (*models.User, error) {
	ctx = wrap.WithAction(ctx, "validate_token")

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, wrap.Error(ctx, fmt.Errorf("%w: %v", ErrInvalidToken, err))
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userIDStr, _ := mc["user_id"].(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("invalid 'user_id' in token claims"))
	}

	roleStr, _ := mc["role"].(string)
	role := types.UserRole(roleStr)
	if !types.IsValidRole(role) {
		return nil, wrap.Error(ctx, fmt.Errorf("invalid 'role' in token claims"))
	}

	user := &models.User{
		ID:   userID,
		Role: role,
	}

	if schoolIDStr, ok := mc["school_id"].(string); ok && schoolIDStr != "" {
		schoolID, err := uuid.Parse(schoolIDStr)
		if err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("invalid 'school_id' in token claims"))
		}
		user.SchoolID = &schoolID
	}

	return user, nil
}
