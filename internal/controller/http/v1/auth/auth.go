package auth

import (
	"net/http"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/auth"
	"clocker/backend/internal/repository/postgres/user"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type Controller struct {
	user User
	auth *auth.Auth
}

func NewController(user User, a *auth.Auth) *Controller {
	return &Controller{user: user, auth: a}
}

var errBadCredentials = errors.New("incorrect email or password")

func (uc Controller) SignIn(c *web.Context) error {
	var data user.SignInRequest

	err := c.BindFunc(&data, "Email", "Password")
	if err != nil {
		return c.RespondError(err)
	}

	detail, err := uc.user.GetByEmail(c.Ctx, data.Email)
	if err != nil {
		if web.StatusOf(err) == http.StatusUnauthorized {
			return c.RespondError(web.NewRequestError(errBadCredentials, http.StatusUnauthorized))
		}
		return c.RespondError(err)
	}

	if detail.Password == nil || detail.Role == nil || !detail.Active {
		return c.RespondError(web.NewRequestError(errBadCredentials, http.StatusUnauthorized))
	}

	if err = bcrypt.CompareHashAndPassword([]byte(*detail.Password), []byte(data.Password)); err != nil {
		return c.RespondError(web.NewRequestError(errBadCredentials, http.StatusUnauthorized))
	}

	accessToken, refreshToken, err := uc.auth.GenerateTokens(detail.ID, *detail.Role)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"status": true,
		"data": map[string]interface{}{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"role":          *detail.Role,
		},
	}, http.StatusOK)
}

func (uc Controller) RefreshToken(c *web.Context) error {
	var data user.RefreshTokenRequest

	err := c.BindFunc(&data, "RefreshToken")
	if err != nil {
		return c.RespondError(err)
	}

	claims, err := uc.auth.ValidateRefreshToken(data.RefreshToken)
	if err != nil {
		return c.RespondError(web.NewRequestError(err, http.StatusUnauthorized))
	}

	// Role and active flag may have changed since the refresh token was issued.
	detail, err := uc.user.GetById(c.Ctx, claims.UserId)
	if err != nil || !detail.Active || detail.Role == nil {
		return c.RespondError(web.NewRequestError(errors.New("user is no longer active"), http.StatusUnauthorized))
	}

	accessToken, refreshToken, err := uc.auth.GenerateTokens(detail.ID, *detail.Role)
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "generating new tokens"), http.StatusInternalServerError))
	}

	return c.Respond(map[string]interface{}{
		"status": true,
		"data": map[string]interface{}{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"role":          *detail.Role,
		},
	}, http.StatusOK)
}
