// Package server provides the HTTP REST API for the recruitment pipeline.
package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenLifetime is how long issued operator tokens stay valid
const tokenLifetime = 24 * time.Hour

// Claims represents JWT claims for an operator token.
type Claims struct {
	Subject string `json:"sub_name,omitempty"`
	jwt.RegisteredClaims
}

// JWTService provides JWT token generation and validation functionality.
type JWTService struct {
	secret []byte
}

// NewJWTService creates a new JWT service with the given signing secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{secret: []byte(secret)}
}

// GenerateToken generates a signed token for the given subject.
func (s *JWTService) GenerateToken(subject string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates a token string and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	return claims, nil
}

// withAuth requires a valid bearer token on every route except /health.
// When no JWT secret is configured the guard is disabled and every request
// passes through.
func (s *Server) withAuth(next http.Handler) http.Handler {
	if s.jwtService == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			s.errorResponse(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			s.errorResponse(w, http.StatusUnauthorized, "Authorization header must use the Bearer scheme")
			return
		}

		if _, err := s.jwtService.ValidateToken(tokenString); err != nil {
			s.errorResponse(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
