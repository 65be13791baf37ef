package presenter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/zeebo/xxh3"
)

type errorResponse struct {
	Error string `json:"error"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

// OKList serves a list payload with an ETag derived from the body so
// the admin frontend can poll cheaply with If-None-Match.
func OKList(c echo.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return InternalError(c, err)
	}

	etag := fmt.Sprintf("%q", fmt.Sprintf("%016x", xxh3.Hash(body)))
	if c.Request().Header.Get("If-None-Match") == etag {
		return c.NoContent(http.StatusNotModified)
	}
	c.Response().Header().Set("ETag", etag)
	return c.JSONBlob(http.StatusOK, body)
}

func Created(c echo.Context, payload any) error {
	return c.JSON(http.StatusCreated, payload)
}

func BadRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func BadRequestMessage(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

// Unauthorized is deliberately uniform: no hint about which part of
// authentication failed.
func Unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
}

func Forbidden(c echo.Context, reason string) error {
	if reason == "" {
		reason = "forbidden"
	}
	return c.JSON(http.StatusForbidden, errorResponse{Error: reason})
}

func NotFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, errorResponse{Error: msg})
}

func TooManyRequests(c echo.Context) error {
	return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
}

func InternalError(c echo.Context, err error) error {
	slog.Error(
		"internal error",
		slog.String("error", err.Error()),
		slog.String("path", c.Request().URL.Path),
		slog.String("module", "rest"),
	)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
