package matterform

import (
	"io/fs"

	"github.com/goliatone/go-matterform/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in page and terms templates so callers
// can copy or extend them and pass the result to vanilla.WithTemplatesFS.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the stylesheet the built-in templates link to, for callers
// serving the page from their own mux.
//
//	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServerFS(matterform.AssetsFS())))
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
