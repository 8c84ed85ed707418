package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ehime-live/live-schedule/app/event"
)

const (
	codeNotFound           = "not_found"
	codeInvalidID          = "invalid_id"
	codeInvalidFilter      = "invalid_filter"
	codeInvalidRequestBody = "invalid_request_body"
	codeValidationFailed   = "validation_failed"
	codeInvalidCredentials = "invalid_credentials"
	codeFeedDisabled       = "feed_disabled"
	codeQueueFull          = "queue_full"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields event.FieldErrors `json:"fields,omitempty"`
}

func writeError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg, Code: code})
}

func writeValidationError(c *gin.Context, status int, msg string, fields event.FieldErrors) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg, Code: codeValidationFailed, Fields: fields})
}
