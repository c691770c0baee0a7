package handlers

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.json
var openapiJSON []byte

// DocsHandler serves the OpenAPI document consumed by the swagger UI.
type DocsHandler struct{}

func NewDocsHandler() *DocsHandler {
	return &DocsHandler{}
}

func (h *DocsHandler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openapiJSON)
}
