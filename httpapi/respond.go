package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"

	"github.com/librarium/librarium/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const contentTypeJSON = "application/json; charset=utf-8"

type successEnvelope struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

type failEnvelope struct {
	Status string   `json:"status"`
	Data   failData `json:"data"`
}

type failData struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

type errorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// respondSuccess writes a jsend success envelope.
func respondSuccess(c *gin.Context, status int, data any) {
	writeJSON(c, status, successEnvelope{Status: "success", Data: data})
}

// respondError maps an error from the core taxonomy to an HTTP status and a
// jsend envelope: request errors become "fail" with a machine-readable kind,
// server-side failures become "error" without internal detail.
func respondError(c *gin.Context, err error) {
	kind := core.Kind(err)
	status := statusFromKind(kind)

	if status >= http.StatusInternalServerError {
		writeJSON(c, status, errorEnvelope{Status: "error", Message: "service unavailable"})
		return
	}

	writeJSON(c, status, failEnvelope{
		Status: "fail",
		Data:   failData{Kind: kind, Description: err.Error()},
	})
}

func statusFromKind(kind string) int {
	switch kind {
	case "validation_error":
		return http.StatusBadRequest
	case "unauthorized":
		return http.StatusUnauthorized
	case "forbidden":
		return http.StatusForbidden
	case "not_found":
		return http.StatusNotFound
	case "conflict", "already_returned", "out_of_stock":
		return http.StatusConflict
	case "unavailable":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(c *gin.Context, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Data(status, contentTypeJSON, body)
}

// bindJSON decodes a request body, reporting malformed payloads as
// validation failures.
func bindJSON(c *gin.Context, target any) error {
	if err := json.NewDecoder(c.Request.Body).Decode(target); err != nil {
		return core.ErrValidation
	}

	return nil
}
