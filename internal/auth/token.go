package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token verification failures. Callers distinguish these with errors.Is;
// everything that is not an expired or forged token is a payload-shape
// problem (bare-string payload, missing or non-string userId claim).
var (
	ErrTokenExpired     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrInvalidPayload   = errors.New("token payload is invalid")
)

// JWTService issues and verifies HS256-signed tokens carrying the subject
// user id. There is no refresh or rotation; expiry is the only lifecycle.
type JWTService struct {
	secret      []byte
	tokenExpire time.Duration
}

func NewJWTService(secret []byte, tokenExpire time.Duration) *JWTService {
	return &JWTService{secret: secret, tokenExpire: tokenExpire}
}

// CreateToken signs a token embedding the user id, with iat and exp claims.
func (s *JWTService) CreateToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"iat":    jwt.NewNumericDate(now),
		"exp":    jwt.NewNumericDate(now.Add(s.tokenExpire)),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// VerifyToken validates the signature and expiry and returns the embedded
// user id. A forged token is reported before an expired one: "expired"
// means the signature was valid and only the lifetime elapsed.
func (s *JWTService) VerifyToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		default:
			return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: payload is not an object", ErrInvalidPayload)
	}

	raw, ok := claims["userId"]
	if !ok {
		return "", fmt.Errorf("%w: payload has no userId", ErrInvalidPayload)
	}

	userID, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: userId is not a string", ErrInvalidPayload)
	}

	return userID, nil
}
