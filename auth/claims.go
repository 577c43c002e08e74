package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User identifies the signed-in account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type idClaims struct {
	Email  string `json:"email"`
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// The backend verifies the token signature; locally the claims are only read.
func parseClaims(idToken string) (*idClaims, error) {
	claims := new(idClaims)
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, fmt.Errorf("malformed identity token: %w", err)
	}
	return claims, nil
}

func expiryOf(idToken string) (time.Time, error) {
	claims, err := parseClaims(idToken)
	if err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, errors.New("identity token has no expiry")
	}
	return exp.Time, nil
}

func userOf(idToken string) (*User, error) {
	claims, err := parseClaims(idToken)
	if err != nil {
		return nil, err
	}
	u := &User{ID: claims.UserID, Email: claims.Email}
	if u.ID == "" {
		u.ID = claims.Subject
	}
	return u, nil
}
