package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-matterform/pkg/model"
	"github.com/goliatone/go-matterform/pkg/render"
)

const messageSessionExpired = "Your form session expired, please try again."

func (s *Server) page(w http.ResponseWriter, r *http.Request, sess *session) {
	s.renderPage(w, r, sess, http.StatusOK, nil)
}

// pageEvent applies one form post and redirects back to the page. Rejected
// operations render the page directly with the error on top.
func (s *Server) pageEvent(w http.ResponseWriter, r *http.Request, sess *session) {
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, r, sess, http.StatusBadRequest, []string{err.Error()})
		return
	}
	if r.PostForm.Get(CSRFField) != sess.csrf {
		s.renderPage(w, r, sess, http.StatusForbidden, []string{messageSessionExpired})
		return
	}

	event := chi.URLParam(r, "event")
	if strings.HasPrefix(r.URL.Path, pagePath+"/picker/") {
		event = "picker/" + event
	}

	ctx := opContext(r)
	ctrl := sess.ctrl
	var err error
	switch event {
	case "region":
		err = ctrl.ChangeRegion(ctx, r.PostForm.Get("region"))
	case "name":
		err = ctrl.SelectName(ctx, r.PostForm.Get("name"))
	case "picker/open":
		err = ctrl.OpenNamePicker()
	case "picker/close":
		ctrl.CloseNamePicker()
	case "create":
		for _, field := range []model.Field{model.FieldSelectedPerson, model.FieldTitle, model.FieldComment} {
			if _, present := r.PostForm[string(field)]; !present {
				continue
			}
			if err = ctrl.SetField(ctx, field, r.PostForm.Get(string(field))); err != nil {
				break
			}
		}
		if err == nil {
			err = ctrl.Create(ctx)
		}
	case "accept":
		err = ctrl.AcceptTerms(ctx)
	case "reject":
		ctrl.RejectTerms()
	case "reset":
		ctrl.Reset()
	default:
		http.NotFound(w, r)
		return
	}

	s.settle(r, sess)
	if err != nil {
		status := statusFor(err)
		message := err.Error()
		if status >= http.StatusInternalServerError {
			s.logger.Error("server: page event failed", zap.String("event", event), zap.Error(err))
			message = "Unexpected error: " + message
		}
		s.renderPage(w, r, sess, status, []string{message})
		return
	}
	http.Redirect(w, r, pagePath, http.StatusSeeOther)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, sess *session, status int, formErrors []string) {
	renderer, err := s.renderers.Resolve(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, err := renderer.Render(r.Context(), sess.ctrl.Snapshot(), render.RenderOptions{
		Action:     pagePath,
		TermsText:  s.termsText,
		Hidden:     []render.HiddenField{render.CSRFToken(CSRFField, sess.csrf)},
		FormErrors: formErrors,
		Theme:      s.theme,
	})
	if err != nil {
		s.logger.Error("server: render page", zap.String("renderer", renderer.Name()), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(out)
}
