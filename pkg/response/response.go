// Package response writes JSON bodies in the wire shape the frontend expects:
// raw payloads on success, {"message": "..."} on error.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutorsync/backend/pkg/apperr"
)

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends 400 with a message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}

// Error maps err through the apperr taxonomy and sends {"message": ...}.
func Error(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"message": apperr.Message(err)})
}
