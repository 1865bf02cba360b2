package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/gommon/random"
	"github.com/letsco/splithub/db/models"
)

const Audience = "splithub"

type jwtCustomClaims struct {
	ClientID string `json:"client_id"`

	jwt.StandardClaims
}

// GenerateAccessToken : Generate Access Token
func GenerateAccessToken(secret []byte, expiryInSeconds int, c *models.Client) (string, error) {
	now := time.Now()
	claims := &jwtCustomClaims{
		c.ClientID,
		jwt.StandardClaims{
			Audience:  Audience,
			Id:        random.String(16, random.Alphanumeric),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(time.Second * time.Duration(expiryInSeconds)).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	t, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return t, nil
}

// ParseAccessToken returns the client id of a valid access token.
func ParseAccessToken(secret []byte, tokenString string) (string, error) {
	claims := &jwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || !claims.VerifyAudience(Audience, true) || claims.ClientID == "" {
		return "", errors.New("invalid token")
	}
	return claims.ClientID, nil
}
