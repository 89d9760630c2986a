package auth

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// ctxKey represents the type of value for the context key.
type ctxKey int

// Key is used to store/retrieve a Claims value from a context.Context.
const Key ctxKey = 1

// These are the expected values for Claims.Role.
const (
	RoleAdmin = "ADMIN"
	RoleClock = "CLOCK"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	UserId int    `json:"user_id"`
	Role   string `json:"role"`
	Type   string `json:"type"`
}

// Authorized returns true if the claims has at least one of the provided roles.
func (c Claims) Authorized(roles ...string) bool {
	for _, want := range roles {
		if c.Role == want {
			return true
		}
	}
	return false
}

// Auth is used to authenticate clients. It can generate a token for a
// set of user claims and recreate the claims by parsing the token.
type Auth struct {
	key        []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// New creates an *Auth signing tokens with HS256 and key.
func New(key string, accessTTL, refreshTTL time.Duration) (*Auth, error) {
	if key == "" {
		return nil, errors.New("jwt key must not be empty")
	}
	if accessTTL <= 0 {
		accessTTL = 12 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}

	return &Auth{
		key:        []byte(key),
		method:     jwt.SigningMethodHS256,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// GenerateTokens returns an access and a refresh token for the user.
func (a *Auth) GenerateTokens(userID int, role string) (string, string, error) {
	access, err := a.sign(userID, role, TypeAccess, a.accessTTL)
	if err != nil {
		return "", "", errors.Wrap(err, "signing access token")
	}

	refresh, err := a.sign(userID, role, TypeRefresh, a.refreshTTL)
	if err != nil {
		return "", "", errors.Wrap(err, "signing refresh token")
	}

	return access, refresh, nil
}

// ValidateToken recreates the Claims that were used to generate an access token.
func (a *Auth) ValidateToken(tokenStr string) (Claims, error) {
	return a.parse(tokenStr, TypeAccess)
}

// ValidateRefreshToken recreates the Claims of a refresh token.
func (a *Auth) ValidateRefreshToken(tokenStr string) (Claims, error) {
	return a.parse(tokenStr, TypeRefresh)
}

func (a *Auth) sign(userID int, role, typ string, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   fmt.Sprint(userID),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
		UserId: userID,
		Role:   role,
		Type:   typ,
	}

	return jwt.NewWithClaims(a.method, claims).SignedString(a.key)
}

func (a *Auth) parse(tokenStr, typ string) (Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != a.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.key, nil
	})
	if err != nil {
		return Claims{}, errors.Wrap(err, "parsing token")
	}
	if !token.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if claims.Type != typ {
		return Claims{}, errors.Errorf("expected %s token", typ)
	}

	return claims, nil
}
