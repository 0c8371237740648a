package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultTokenExpiry is used when no expiry is configured
	DefaultTokenExpiry = 90 * 24 * time.Hour

	secretKeyFile  = ".framecheck-secret-key"
	minSecretBytes = 32
	tokenIssuer    = "framecheck"
)

// ErrInvalidToken is returned for tokens that fail signature or claim checks
var ErrInvalidToken = errors.New("invalid token")

// AuthService issues and validates API client tokens
type AuthService struct {
	secretKey   string
	tokenExpiry time.Duration
	now         func() time.Time
}

// ClientClaims are the JWT claims of an API client token
type ClientClaims struct {
	ClientName string `json:"client_name"`
	jwt.RegisteredClaims
}

// NewAuthService creates the token service. An empty secret is loaded from,
// or generated into, a key file in the user's home directory so tokens
// survive restarts.
func NewAuthService(secretKey string, tokenExpiry time.Duration) *AuthService {
	secretKey = strings.TrimSpace(secretKey)
	if secretKey == "" {
		secretKey = loadOrCreateSecret(secretKeyPath())
	}

	if len(secretKey) < minSecretBytes {
		log.Printf("Warning: Secret key is only %d bytes. Recommended minimum is %d bytes for HMAC-SHA256", len(secretKey), minSecretBytes)
	}

	if tokenExpiry <= 0 {
		tokenExpiry = DefaultTokenExpiry
	}

	return &AuthService{
		secretKey:   secretKey,
		tokenExpiry: tokenExpiry,
		now:         time.Now,
	}
}

func secretKeyPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return filepath.Join(os.TempDir(), secretKeyFile)
	}
	return filepath.Join(homeDir, secretKeyFile)
}

func loadOrCreateSecret(keyFile string) string {
	if data, err := os.ReadFile(keyFile); err == nil && len(strings.TrimSpace(string(data))) > 0 {
		secret := strings.TrimSpace(string(data))
		log.Printf("Loaded persisted secret key from %s (length: %d bytes)", keyFile, len(secret))
		return secret
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "framecheck"
	}

	var secret string
	randomBytes := make([]byte, minSecretBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		secret = fmt.Sprintf("framecheck-%s-%d-backup", hostname, time.Now().UnixNano())
		log.Printf("Warning: Random generation failed, using fallback key")
	} else {
		secret = fmt.Sprintf("framecheck-%s-%s", hostname, hex.EncodeToString(randomBytes))
	}

	if err := os.WriteFile(keyFile, []byte(secret), 0o600); err != nil {
		log.Printf("Warning: Could not persist secret key to %s: %v", keyFile, err)
	} else {
		log.Printf("Generated and persisted secret key to %s (length: %d bytes)", keyFile, len(secret))
	}
	return secret
}

// TokenExpiry returns how long issued tokens stay valid
func (a *AuthService) TokenExpiry() time.Duration {
	return a.tokenExpiry
}

// GenerateToken signs a token for an API client
func (a *AuthService) GenerateToken(clientName string) (string, time.Time, error) {
	now := a.now()
	expiresAt := now.Add(a.tokenExpiry)

	claims := ClientClaims{
		ClientName: clientName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   clientName,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(a.secretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// ValidateToken verifies a token and returns its claims
func (a *AuthService) ValidateToken(tokenString string) (*ClientClaims, error) {
	claims := &ClientClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.secretKey), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
