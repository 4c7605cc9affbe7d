package handlers

import (
	"encoding/json"
	"net/http"
)

// envelope mirrors the wire contract of every endpoint: status is
// "success" or "error", results/total only appear on list responses.
type envelope struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Total   *int   `json:"total,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Status: "success", Data: data})
}

func respondList(w http.ResponseWriter, data any, results, total int) {
	writeJSON(w, http.StatusOK, envelope{
		Status:  "success",
		Results: &results,
		Total:   &total,
		Data:    data,
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Status: "error", Message: message})
}

func respondServerError(w http.ResponseWriter) {
	respondError(w, http.StatusInternalServerError, "internal server error")
}
