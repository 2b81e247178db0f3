package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/effisocial/backend/internal/services"
	"github.com/anonto42/effisocial/backend/pkg/log"
)

// HTTPErrorHandler renders every error as {"success": false, "message": ...}.
// Service errors keep their status and message; anything unexpected is
// logged and reported as a generic 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	var svcErr *services.Error
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &svcErr):
		status = svcErr.Status()
		message = svcErr.Message
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if status >= http.StatusInternalServerError {
			break
		}
		if m, ok := httpErr.Message.(string); ok {
			message = m
		} else {
			message = fmt.Sprint(httpErr.Message)
		}
	}

	if status >= http.StatusInternalServerError {
		logger := log.WithComponent("http")
		logger.Error().Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Msg("request failed")
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, echo.Map{"success": false, "message": message})
	}
	if writeErr != nil {
		log.Err("failed to write error response", writeErr)
	}
}

func ok(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": message})
}

// bindAndValidate binds the request into req and runs the registered validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}
	return c.Validate(req)
}

func uintParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}

// optionalFile returns the uploaded file for field, or nil when the request
// carries none.
func optionalFile(c echo.Context, field string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if err == nil {
		return fh, nil
	}
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart upload")
}
