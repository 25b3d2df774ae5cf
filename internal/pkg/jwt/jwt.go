package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Token scopes carried in the "scope" claim
const (
	ScopeUpload = "upload"
	ScopeStream = "stream"
)

type Service interface {
	// GenerateUploadToken issues a token allowed to write attendance records.
	GenerateUploadToken(subject string, ttl time.Duration) (token string, expiresAt int64, err error)
	// GenerateStreamToken issues a short-lived token for the SSE stream,
	// which browsers can only pass as a query parameter.
	GenerateStreamToken(subject string) (token string, expiresIn int, err error)
	ValidateStreamToken(tokenString string) (subject string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	uploadTokenTTL time.Duration
	tokenAuth      *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, uploadTokenTTL time.Duration) Service {
	return &JWTService{
		uploadTokenTTL: uploadTokenTTL,
		tokenAuth:      jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateUploadToken(subject string, ttl time.Duration) (token string, expiresAt int64, err error) {
	if ttl <= 0 {
		ttl = j.uploadTokenTTL
	}
	now := time.Now()
	expiresAt = now.Add(ttl).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"sub":   subject,
		"scope": ScopeUpload,
		"iat":   now.Unix(),
		"exp":   expiresAt,
	})
	return tokenString, expiresAt, err
}

// GenerateStreamToken tokens live for five minutes
func (j *JWTService) GenerateStreamToken(subject string) (token string, expiresIn int, err error) {
	expiresIn = 300
	expiresAt := time.Now().Add(5 * time.Minute).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"sub":   subject,
		"scope": ScopeStream,
		"exp":   expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresIn, nil
}

func (j *JWTService) ValidateStreamToken(tokenString string) (subject string, err error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", err
	}

	scope, ok := token.Get("scope")
	if !ok || scope != ScopeStream {
		return "", jwt.ErrInvalidJWT()
	}

	return token.Subject(), nil
}
