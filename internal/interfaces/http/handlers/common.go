// Package handlers implements the HTTP request handlers for the assistant's
// API surface.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/DrugRx-Intelligence/pkg/errors"
)

// errorResponse is the uniform error payload.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps an application error onto its HTTP status and writes the
// uniform error payload.
func writeError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	c.JSON(code.HTTPStatus(), errorResponse{
		Error: errorBody{
			Code:    code.String(),
			Message: err.Error(),
		},
	})
}

// writeBadRequest writes a 400 with a validation error payload.
func writeBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorResponse{
		Error: errorBody{
			Code:    errors.ErrCodeValidation.String(),
			Message: message,
		},
	})
}
