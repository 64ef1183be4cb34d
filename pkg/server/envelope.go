package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goliatone/go-matterform/pkg/matter"
)

// Envelope is the body of every /api/matter response.
type Envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Errors  []string         `json:"errors,omitempty"`
	State   *matter.Snapshot `json:"state,omitempty"`
}

const (
	messageOK               = "OK"
	messageValidationFailed = "Validation failed"
	messageCreated          = "Matter created"
)

func ok(message string, snap matter.Snapshot) Envelope {
	return Envelope{Success: true, Message: message, State: &snap}
}

// validationFailed lists one message per failing field.
func validationFailed(snap matter.Snapshot) Envelope {
	return Envelope{
		Success: false,
		Message: messageValidationFailed,
		Errors:  snap.Errors.Sorted(),
		State:   &snap,
	}
}

func unexpected(err error, snap *matter.Snapshot) Envelope {
	return Envelope{
		Success: false,
		Message: "Unexpected error: " + err.Error(),
		State:   snap,
	}
}

func badRequest(err error, snap *matter.Snapshot) Envelope {
	return Envelope{
		Success: false,
		Message: err.Error(),
		Errors:  []string{err.Error()},
		State:   snap,
	}
}

// statusFor maps controller errors onto HTTP status codes. Misuse of the
// form is the caller's fault; anything else is unexpected.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, matter.ErrRegionRequired),
		errors.Is(err, matter.ErrNameRequired),
		errors.Is(err, matter.ErrUnknownName),
		errors.Is(err, matter.ErrTermsNotOpen),
		errors.Is(err, matter.ErrUnknownField),
		errors.Is(err, matter.ErrReadOnlyField),
		errors.Is(err, matter.ErrUnknownPerson),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func envelopeFor(err error, snap matter.Snapshot) Envelope {
	if statusFor(err) == http.StatusBadRequest {
		return badRequest(err, &snap)
	}
	return unexpected(err, &snap)
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	writeJSON(w, status, env)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(body)
}
