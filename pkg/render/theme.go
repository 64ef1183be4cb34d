package render

import (
	"fmt"
	"path"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Partial names renderers look up in RendererConfig.Partials.
const (
	PartialPage       = "matter.page"
	PartialTermsModal = "matter.terms"
)

// DefaultPartials are used when a theme does not provide its own templates.
func DefaultPartials() map[string]string {
	return map[string]string{
		PartialPage:       "page.html",
		PartialTermsModal: "terms.html",
	}
}

// ThemeConfig derives the renderer configuration from a go-theme selection.
// Variant tokens, templates and asset files override the base manifest;
// every token is also exposed as a "--<token>" CSS variable.
func ThemeConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	cfg := &theme.RendererConfig{
		Partials: make(map[string]string),
		Tokens:   make(map[string]string),
		CSSVars:  make(map[string]string),
	}
	for key, value := range fallbacks {
		cfg.Partials[key] = value
	}
	if selection == nil {
		cfg.AssetURL = func(name string) string { return name }
		return cfg
	}

	cfg.Theme = selection.Theme
	cfg.Variant = selection.Variant

	prefix := ""
	files := make(map[string]string)
	if manifest := selection.Manifest; manifest != nil {
		for key, value := range manifest.Tokens {
			cfg.Tokens[key] = value
		}
		for key, value := range manifest.Templates {
			cfg.Partials[key] = value
		}
		prefix = manifest.Assets.Prefix
		for key, value := range manifest.Assets.Files {
			files[key] = value
		}
		if variant, ok := manifest.Variants[selection.Variant]; ok {
			for key, value := range variant.Tokens {
				cfg.Tokens[key] = value
			}
			for key, value := range variant.Templates {
				cfg.Partials[key] = value
			}
			if variant.Assets.Prefix != "" {
				prefix = variant.Assets.Prefix
			}
			for key, value := range variant.Assets.Files {
				files[key] = value
			}
		}
	}
	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	cfg.AssetURL = func(name string) string {
		file, ok := files[name]
		if !ok {
			file = name
		}
		if prefix == "" || strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
			return file
		}
		return path.Join(prefix, file)
	}
	return cfg
}

// StaticSelector is a theme.ThemeSelector over a fixed set of manifests.
type StaticSelector struct {
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*StaticSelector)(nil)

// NewStaticSelector indexes manifests by name. Blank Select arguments fall
// back to defaultTheme and defaultVariant.
func NewStaticSelector(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) *StaticSelector {
	s := &StaticSelector{
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultTheme:   defaultTheme,
		defaultVariant: defaultVariant,
	}
	for _, manifest := range manifests {
		if manifest == nil || manifest.Name == "" {
			continue
		}
		s.manifests[manifest.Name] = manifest
	}
	return s
}

// Select resolves name and variant. An unknown variant keeps the base
// tokens; an unknown theme is an error.
func (s *StaticSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if strings.TrimSpace(name) == "" {
		name = s.defaultTheme
	}
	if strings.TrimSpace(variant) == "" {
		variant = s.defaultVariant
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("render: theme %q not found", name)
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// DefaultManifest is the built-in theme with a light base and a dark variant.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "default",
		Version: "1.0.0",
		Tokens: map[string]string{
			"color-brand":   "#1f6feb",
			"color-surface": "#ffffff",
			"color-text":    "#1f2328",
			"color-danger":  "#cf222e",
			"color-success": "#1a7f37",
			"radius":        "6px",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"color-surface": "#0d1117",
					"color-text":    "#e6edf3",
				},
			},
		},
	}
}
