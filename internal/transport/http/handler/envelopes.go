package handler

import (
	"encoding/json"
	"net/http"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OtpSendEnvelope wraps send-otp responses.
type OtpSendEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// OtpVerifyEnvelope wraps verify-otp responses. The reason a code was
// rejected (absent, expired, mismatch) is deliberately not disclosed.
type OtpVerifyEnvelope struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
