package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken токен не прошёл проверку подписи, срока или формата.
var ErrInvalidToken = errors.New("invalid token")

// Claims данные, которые хранятся в токене.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserUID возвращает uid пользователя из subject.
func (c *Claims) UserUID() string {
	return c.Subject
}

// GenerateToken выпускает токен для пользователя.
func (j *MakerImpl) GenerateToken(userUID, username string) (string, error) {
	const op = "jwt.GenerateToken"

	if userUID == "" {
		return "", fmt.Errorf("%s: empty user uid", op)
	}

	now := j.now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userUID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken проверяет подпись и срок действия токена.
// Любая ошибка проверки оборачивает ErrInvalidToken.
func (j *MakerImpl) ParseToken(tokenStr string) (*Claims, error) {
	const op = "jwt.ParseToken"

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}
