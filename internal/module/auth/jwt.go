package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims represents JWT token claims for admin sessions.
type Claims struct {
	jwt.RegisteredClaims
	AdminID uuid.UUID `json:"admin_id"`
	Email   string    `json:"email"`
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret      string
	TokenExpiry time.Duration
	Issuer      string
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		TokenExpiry: time.Hour,
		Issuer:      "shoutly",
	}
}

// JWTManager handles JWT token operations.
type JWTManager struct {
	config *JWTConfig
}

// NewJWTManager creates a new JWT manager.
func NewJWTManager(config *JWTConfig) *JWTManager {
	if config == nil {
		config = DefaultJWTConfig()
	}
	if config.TokenExpiry == 0 {
		config.TokenExpiry = time.Hour
	}
	if config.Issuer == "" {
		config.Issuer = "shoutly"
	}
	return &JWTManager{config: config}
}

// GenerateToken generates a signed token for the admin.
func (m *JWTManager) GenerateToken(admin *Admin) (string, time.Time, error) {
	expiresAt := time.Now().Add(m.config.TokenExpiry)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   admin.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			ID:        uuid.New().String(),
		},
		AdminID: admin.ID,
		Email:   admin.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(m.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signedToken, expiresAt, nil
}

// ValidateToken validates a token and returns the claims.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.config.Secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidTokenClaims
	}

	return claims, nil
}

// GetTokenExpiry returns the token expiry duration.
func (m *JWTManager) GetTokenExpiry() time.Duration {
	return m.config.TokenExpiry
}
