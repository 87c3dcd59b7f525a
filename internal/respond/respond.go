// Package respond writes the shared success/error envelopes used by the
// portal API and the open gateway: {success:true,data,meta?} on success,
// {success:false,error} on failure.
package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Meta    any  `json:"meta,omitempty"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// OK writes a success envelope without pagination metadata.
func OK(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, successEnvelope{Success: true, Data: data})
}

// OKWithMeta writes a success envelope with pagination metadata.
func OKWithMeta(w http.ResponseWriter, data, meta any) {
	write(w, http.StatusOK, successEnvelope{Success: true, Data: data, Meta: meta})
}

// Error writes an error envelope with the given status code.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, errorEnvelope{Success: false, Error: message})
}

func write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[portal-service] respond: encode payload failed: %v", err)
	}
}
