package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeAccess - единственный тип токена, который принимает сервис.
const TokenTypeAccess = "access"

var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrTokenType    = errors.New("token type mismatch")
)

type Claims struct {
	TokenType string `json:"typ,omitempty"`
	Email     string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier проверяет access-токены внешнего сервиса учетных записей.
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier создает проверку HS256-токенов с заданным издателем.
func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify валидирует подпись, издателя, срок и тип токена. Токен без
// типа считается access-токеном.
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.NewParser(options...).ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != "" && claims.TokenType != TokenTypeAccess {
		return nil, ErrTokenType
	}

	return claims, nil
}
