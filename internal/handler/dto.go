package handler

import (
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

func responseError(c echo.Context, status int, message string, err error) error {
	resp := ErrorResponse{Message: message}
	if err != nil {
		resp.Detail = err.Error()
	}
	return c.JSON(status, resp)
}
