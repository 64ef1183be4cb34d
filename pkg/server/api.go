package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-matterform/pkg/model"
	"github.com/goliatone/go-matterform/pkg/store"
)

var errBadRequest = errors.New("invalid request body")

const maxBodyBytes = 64 << 10

func decodeBody(r *http.Request, dest any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// opContext detaches controller operations from the request so lookups
// started by a call survive the response. Close still cancels them.
func opContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, sess *session, err error) {
	s.settle(r, sess)
	snap := sess.ctrl.Snapshot()
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("server: operation failed", zap.String("session", sess.id), zap.Error(err))
		}
		writeEnvelope(w, status, envelopeFor(err, snap))
		return
	}
	writeEnvelope(w, http.StatusOK, ok(messageOK, snap))
}

func (s *Server) apiState(w http.ResponseWriter, r *http.Request, sess *session) {
	writeEnvelope(w, http.StatusOK, ok(messageOK, sess.ctrl.Snapshot()))
}

func (s *Server) apiRegion(w http.ResponseWriter, r *http.Request, sess *session) {
	var body struct {
		Region string `json:"region"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.respond(w, r, sess, err)
		return
	}
	s.respond(w, r, sess, sess.ctrl.ChangeRegion(opContext(r), body.Region))
}

func (s *Server) apiName(w http.ResponseWriter, r *http.Request, sess *session) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.respond(w, r, sess, err)
		return
	}
	s.respond(w, r, sess, sess.ctrl.SelectName(opContext(r), body.Name))
}

func (s *Server) apiOpenPicker(w http.ResponseWriter, r *http.Request, sess *session) {
	s.respond(w, r, sess, sess.ctrl.OpenNamePicker())
}

func (s *Server) apiClosePicker(w http.ResponseWriter, r *http.Request, sess *session) {
	sess.ctrl.CloseNamePicker()
	s.respond(w, r, sess, nil)
}

func (s *Server) apiField(w http.ResponseWriter, r *http.Request, sess *session) {
	var body struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.respond(w, r, sess, err)
		return
	}
	s.respond(w, r, sess, sess.ctrl.SetField(opContext(r), model.Field(body.Field), body.Value))
}

func (s *Server) apiBlur(w http.ResponseWriter, r *http.Request, sess *session) {
	var body struct {
		Field string `json:"field"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.respond(w, r, sess, err)
		return
	}
	s.respond(w, r, sess, sess.ctrl.Blur(model.Field(body.Field)))
}

func (s *Server) apiCreate(w http.ResponseWriter, r *http.Request, sess *session) {
	if err := sess.ctrl.Create(opContext(r)); err != nil {
		s.respond(w, r, sess, err)
		return
	}
	s.settle(r, sess)
	snap := sess.ctrl.Snapshot()
	if !snap.Valid {
		writeEnvelope(w, http.StatusBadRequest, validationFailed(snap))
		return
	}
	writeEnvelope(w, http.StatusOK, ok(messageOK, snap))
}

func (s *Server) apiAccept(w http.ResponseWriter, r *http.Request, sess *session) {
	if err := sess.ctrl.AcceptTerms(opContext(r)); err != nil {
		s.respond(w, r, sess, err)
		return
	}
	s.settle(r, sess)
	snap := sess.ctrl.Snapshot()
	switch {
	case snap.Submitted:
		writeEnvelope(w, http.StatusOK, ok(messageCreated, snap))
	case !snap.Valid:
		writeEnvelope(w, http.StatusBadRequest, validationFailed(snap))
	default:
		writeEnvelope(w, http.StatusOK, ok(messageOK, snap))
	}
}

func (s *Server) apiReject(w http.ResponseWriter, r *http.Request, sess *session) {
	sess.ctrl.RejectTerms()
	s.respond(w, r, sess, nil)
}

func (s *Server) apiReset(w http.ResponseWriter, r *http.Request, sess *session) {
	sess.ctrl.Reset()
	s.respond(w, r, sess, nil)
}

func (s *Server) listMatters(w http.ResponseWriter, r *http.Request) {
	matters, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("server: list matters", zap.Error(err))
		writeEnvelope(w, http.StatusInternalServerError, unexpected(err, nil))
		return
	}
	if matters == nil {
		matters = []store.Matter{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": matters})
}

func (s *Server) getMatter(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeEnvelope(w, http.StatusNotFound, Envelope{Success: false, Message: "Matter not found"})
		return
	}
	if err != nil {
		s.logger.Error("server: get matter", zap.Error(err))
		writeEnvelope(w, http.StatusInternalServerError, unexpected(err, nil))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": m})
}
