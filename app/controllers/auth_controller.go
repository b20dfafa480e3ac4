// Package controllers converts HTTP requests into repository and service
// calls and writes the JSON envelopes the API speaks.
package controllers

import (
	"errors"
	"net/http"

	"github.com/bazaarhq/bazaar/app/models"
	"github.com/bazaarhq/bazaar/app/repositories"
	"github.com/bazaarhq/bazaar/pkg/auth"
	"github.com/bazaarhq/bazaar/pkg/bind"
	"github.com/bazaarhq/bazaar/pkg/logger"
	"github.com/bazaarhq/bazaar/pkg/middleware"
	"github.com/bazaarhq/bazaar/pkg/response"
)

// refreshCookie is the refresh token cookie name. The refresh endpoint and
// logout clear/read the same name.
const refreshCookie = "refreshtoken"

// refreshPath scopes the cookie so it is only sent to the refresh endpoint.
const refreshPath = "/user/refresh_token"

// AuthController handles registration, sessions, and account reads.
type AuthController struct {
	users  repositories.UserRepository
	issuer *auth.TokenIssuer
}

// NewAuthController wires the account endpoints.
func NewAuthController(users repositories.UserRepository, issuer *auth.TokenIssuer) *AuthController {
	return &AuthController{users: users, issuer: issuer}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates an account and opens a session.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if len(req.Password) < 6 {
		response.BadRequest(w, "Password is at least 6 characters long.")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		response.ServerError(w, err)
		return
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     models.RoleCustomer,
	}
	if err := c.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			response.BadRequest(w, "This email already exists.")
			return
		}
		response.ServerError(w, err)
		return
	}

	c.openSession(w, r, user.ID.Hex())
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and opens a session.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.users.FindByEmail(r.Context(), req.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		response.BadRequest(w, "User does not exist.")
		return
	}
	if err != nil {
		response.ServerError(w, err)
		return
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		response.BadRequest(w, "Incorrect password.")
		return
	}

	c.openSession(w, r, user.ID.Hex())
}

// Logout clears the refresh cookie.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     refreshPath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	response.Msg(w, http.StatusOK, "Logged Out")
}

// RefreshToken mints a new access token from the refresh cookie.
func (c *AuthController) RefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookie)
	if err != nil {
		response.BadRequest(w, "Please Login or Register")
		return
	}

	claims, err := c.issuer.VerifyRefresh(cookie.Value)
	if err != nil {
		response.Forbidden(w, "Please Login or Register")
		return
	}

	access, err := c.issuer.AccessToken(claims.UserID)
	if err != nil {
		response.ServerError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"accesstoken": access})
}

// Infor returns the authenticated user without the password hash.
func (c *AuthController) Infor(w http.ResponseWriter, r *http.Request) {
	user, err := c.users.FindByID(r.Context(), middleware.UserID(r.Context()))
	if errors.Is(err, repositories.ErrNotFound) {
		response.BadRequest(w, "User does not exist.")
		return
	}
	if err != nil {
		response.ServerError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

type detailsRequest struct {
	Email string `json:"email" validate:"required"`
}

// Details looks up a user by email for the storefront. Password is
// excluded by the model's JSON tags.
func (c *AuthController) Details(w http.ResponseWriter, r *http.Request) {
	var req detailsRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.users.FindByEmail(r.Context(), req.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		response.NotFound(w, "User not found")
		return
	}
	if err != nil {
		response.ServerError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

// openSession issues both tokens: refresh in an httpOnly cookie scoped to
// the refresh endpoint, access in the response body.
func (c *AuthController) openSession(w http.ResponseWriter, r *http.Request, userID string) {
	access, err := c.issuer.AccessToken(userID)
	if err != nil {
		response.ServerError(w, err)
		return
	}
	refresh, err := c.issuer.RefreshToken(userID)
	if err != nil {
		response.ServerError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    refresh,
		Path:     refreshPath,
		MaxAge:   int(c.issuer.RefreshTTL().Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	logger.WithCtx(r.Context()).Info("session opened", "user_id", userID)
	response.JSON(w, http.StatusOK, map[string]string{"accesstoken": access})
}
