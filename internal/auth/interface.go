package auth

import "dataroom/internal/domain/models"

// JWTVerifier defines the interface for JWT token verification.
// The middleware only sees this interface, so HMAC and JWKS verifiers are interchangeable.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns domain.ErrUnauthorized if the token is invalid, expired, or badly signed.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
