package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
	"reelshare/domain/model"
	"reelshare/infrastructure/logger"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingSecret = errors.New("token secret is empty")
)

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// GenerateToken signs an HS256 token whose subject is the account id.
func GenerateToken(account model.Account, secretKey string, ttl time.Duration) (string, error) {
	if secretKey == "" {
		return "", ErrMissingSecret
	}
	now := GetCurrentTime()
	claims := model.AccountClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   account.ID.Hex(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
		Username: account.Username,
		Role:     account.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}

// ParseToken validates the signature and expiry. The returned error is a
// *jwt.ValidationError when the token itself is bad.
func ParseToken(tokenString, secretKey string) (*model.AccountClaims, error) {
	if secretKey == "" {
		return nil, ErrMissingSecret
	}
	var claims model.AccountClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
