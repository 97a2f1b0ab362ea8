package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/calligro/registration-api/internal/application/otp"
	"github.com/calligro/registration-api/internal/domain"
)

// OtpHandler handles the email OTP endpoints.
type OtpHandler struct {
	svc otp.Service
}

func NewOtpHandler(svc otp.Service) *OtpHandler { return &OtpHandler{svc: svc} }

func (h *OtpHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, OtpSendEnvelope{Success: false, Error: "invalid request body"})
		return
	}
	if err := h.svc.Request(r.Context(), req.Email); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrBadRequest) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, OtpSendEnvelope{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, OtpSendEnvelope{Success: true})
}

func (h *OtpHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, OtpVerifyEnvelope{Valid: false})
		return
	}
	valid, err := h.svc.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, OtpVerifyEnvelope{Valid: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, OtpVerifyEnvelope{Valid: valid})
}
