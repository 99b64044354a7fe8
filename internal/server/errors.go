package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/formation-finder/internal/pipeline"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *pipeline.ValidationError
		notFoundErr   *pipeline.NotFoundError
		configErr     *pipeline.ConfigError
		upstreamErr   *pipeline.UpstreamError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &configErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
