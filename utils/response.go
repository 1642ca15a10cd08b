package utils

import (
	"encoding/json"
	"net/http"
)

// Envelope is the shape of every API response
type Envelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// WriteSuccess answers with status true
func WriteSuccess(w http.ResponseWriter, code int, message string, data any) {
	writeEnvelope(w, code, Envelope{Status: true, Message: message, Data: data})
}

// WriteError answers with status false
func WriteError(w http.ResponseWriter, code int, message string) {
	writeEnvelope(w, code, Envelope{Status: false, Message: message})
}

// WriteErrorData answers with status false and a machine readable payload
func WriteErrorData(w http.ResponseWriter, code int, message string, data any) {
	writeEnvelope(w, code, Envelope{Status: false, Message: message, Data: data})
}

func writeEnvelope(w http.ResponseWriter, code int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(env)
}
