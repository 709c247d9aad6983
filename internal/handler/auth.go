package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/recipe-favorites/internal/service"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	Auth AuthService
	Log  zerolog.Logger
}

func NewAuthHandler(auth AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Log: log}
}

// ----- DTOs -----

// bcrypt only looks at the first 72 bytes of a password
type credentialsReq struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// Register creates a user and returns a token immediately (201).
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if msg, ok := bindAndValidate(c, &req); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Auth.Register(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields),
			errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrPasswordTooLong),
			errors.Is(err, service.ErrAlreadyExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return serverError(c, h.Log, err, "registration failed")
	}
	return c.JSON(http.StatusCreated, res)
}

// Login verifies credentials and returns a fresh token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if msg, ok := bindAndValidate(c, &req); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields),
			errors.Is(err, service.ErrNotFound),
			errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return serverError(c, h.Log, err, "login failed")
	}
	return c.JSON(http.StatusOK, res)
}
