package auth

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"dataroom/internal/domain"
	"dataroom/internal/domain/models"
	"dataroom/internal/domain/services"
)

// Issuer is the iss claim of locally issued tokens
const Issuer = "dataroom"

// HMACTokenService issues and verifies HS256 tokens signed with a shared secret
type HMACTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

var (
	_ JWTVerifier          = (*HMACTokenService)(nil)
	_ services.TokenIssuer = (*HMACTokenService)(nil)
)

// NewHMACTokenService creates a token service. secret must not be empty.
func NewHMACTokenService(secret string, ttl time.Duration, logger *slog.Logger) (*HMACTokenService, error) {
	if secret == "" {
		return nil, errors.New("token secret cannot be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token TTL must be positive")
	}
	return &HMACTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}, nil
}

// IssueToken signs a token whose subject is the user id
func (s *HMACTokenService) IssueToken(userID int64) (string, error) {
	now := s.now()
	claims := &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// VerifyToken validates signature, expiry and issuer
func (s *HMACTokenService) VerifyToken(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{},
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		s.logger.Debug("token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if _, err := claims.GetUserID(); err != nil {
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close implements JWTVerifier
func (s *HMACTokenService) Close() error {
	return nil
}
