package openapi

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
)

//go:embed api.yaml
var embedded embed.FS

// EmbeddedName is the location of the built-in contract.
const EmbeddedName = "api.yaml"

// Embedded returns the contract bundled with the binary.
func Embedded() Document {
	raw, err := embedded.ReadFile(EmbeddedName)
	if err != nil {
		panic(fmt.Sprintf("openapi: embedded contract missing: %v", err))
	}
	return MustNewDocument(fsSource{name: EmbeddedName, embedded: true}, raw)
}

// ReadDocument reads src. fs sources resolve against files; file sources
// read from disk.
func ReadDocument(ctx context.Context, src Source, files fs.FS) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if src == nil {
		return Document{}, fmt.Errorf("openapi: source is required")
	}

	var (
		raw []byte
		err error
	)
	switch src.Kind() {
	case SourceKindFile:
		raw, err = os.ReadFile(src.Location())
	case SourceKindFS:
		if files == nil {
			return Document{}, fmt.Errorf("openapi: fs source %q requires a file system", src.Location())
		}
		raw, err = fs.ReadFile(files, src.Location())
	case SourceKindEmbedded:
		return Embedded(), nil
	default:
		return Document{}, fmt.Errorf("openapi: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return Document{}, fmt.Errorf("openapi: read %s: %w", src.Location(), err)
	}
	return NewDocument(src, raw)
}
