package sec

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateHMACSignedAPIToken generates a jwt access token signed by HS256
// sub: API Caller Identity (operator account, integration name)
func GenerateHMACSignedAPIToken(iss string, sub string, secret []byte, expDuration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": sub,
		"iat": now.Unix(),
		"exp": now.Add(expDuration).Unix(),
		"iss": iss,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseHMACSignedToken verifies a signed token (string) into a parsed jwt.Token object
func ParseHMACSignedToken(signedToken string, secret []byte) (*jwt.Token, error) {
	return jwt.Parse(
		signedToken,
		func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
}

func GetClaimsFromParsedJWTToken(parsedToken *jwt.Token) (jwt.MapClaims, error) {
	if !parsedToken.Valid {
		return nil, errors.New("invalid token")
	}
	claimMap, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("failed to convert token claims to a map")
	}
	return claimMap, nil
}
