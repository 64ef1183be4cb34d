// Package template defines the template engine seam HTML renderers rely on.
// The gotemplate subpackage provides the pongo2 implementation.
package template
