package render

import theme "github.com/goliatone/go-theme"

// RenderOptions describe per-request data that renderers can use to customise
// their output without touching the controller.
type RenderOptions struct {
	// Action is the base path form posts target, e.g. "/matter". Renderers
	// append the event name ("/region", "/create", ...).
	Action string
	// TermsText is the body of the terms modal. HTML renderers sanitise it.
	TermsText string
	// Hidden fields are emitted in every form (session token, CSRF).
	Hidden []HiddenField
	// Errors carries server-side messages keyed by field name. Keys go through
	// MapErrorPayload, so aliases and JSON pointers are accepted.
	Errors map[string][]string
	// FormErrors are form-level messages shown above the fields.
	FormErrors []string
	// Theme is the resolved theme configuration, see ThemeConfig.
	Theme *theme.RendererConfig
}
