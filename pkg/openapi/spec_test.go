package openapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-matterform/pkg/openapi"
)

func TestLoadEmbedded(t *testing.T) {
	spec, err := openapi.LoadEmbedded(context.Background())
	if err != nil {
		t.Fatalf("load embedded: %v", err)
	}
	if spec.Title() != "matterform" || spec.Version() == "" {
		t.Fatalf("unexpected info %q %q", spec.Title(), spec.Version())
	}

	for _, want := range []struct{ method, path, id string }{
		{http.MethodGet, "/api/matter/state", "getState"},
		{http.MethodPost, "/api/matter/region", "changeRegion"},
		{http.MethodPost, "/api/matter/accept", "acceptTerms"},
		{http.MethodGet, "/api/matters/{id}", "getMatter"},
		{http.MethodGet, "/api/lookups/names/{name}/details", "getDetails"},
	} {
		op, ok := spec.Operation(want.method, want.path)
		if !ok || op.ID != want.id {
			t.Fatalf("expected %s %s as %q, got %+v (found=%v)", want.method, want.path, want.id, op, ok)
		}
	}

	ops := spec.Operations()
	for i := 1; i < len(ops); i++ {
		if ops[i-1].Path > ops[i].Path {
			t.Fatalf("operations not sorted: %q before %q", ops[i-1].Path, ops[i].Path)
		}
	}
}

func TestValidateSchema(t *testing.T) {
	spec, err := openapi.LoadEmbedded(context.Background())
	if err != nil {
		t.Fatalf("load embedded: %v", err)
	}

	var valid any
	payload := `{"success":false,"message":"Validation failed","errors":["title: Title is required"]}`
	if err := json.Unmarshal([]byte(payload), &valid); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := spec.ValidateSchema("Envelope", valid); err != nil {
		t.Fatalf("expected valid envelope: %v", err)
	}

	var invalid any
	if err := json.Unmarshal([]byte(`{"success":"yes"}`), &invalid); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := spec.ValidateSchema("Envelope", invalid); err == nil {
		t.Fatalf("expected invalid envelope to fail")
	}
	if err := spec.ValidateSchema("Missing", valid); err == nil {
		t.Fatalf("expected unknown schema error")
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]string{
		"not yaml":    "::::",
		"no paths":    "openapi: 3.0.3\ninfo: {title: x, version: '1'}\npaths: {}\n",
		"bad version": "openapi: 3.0.3\ninfo: {title: x}\npaths:\n  /a:\n    get:\n      responses:\n        '200': {description: ok}\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			doc := openapi.MustNewDocument(openapi.SourceFromFS("api.yaml"), []byte(raw))
			if _, err := openapi.Load(context.Background(), doc); err == nil {
				t.Fatalf("expected load error")
			}
		})
	}
}

func TestReadDocument(t *testing.T) {
	ctx := context.Background()

	files := fstest.MapFS{"contracts/api.yaml": {Data: []byte("openapi: 3.0.3")}}
	doc, err := openapi.ReadDocument(ctx, openapi.SourceFromFS("contracts/api.yaml"), files)
	if err != nil {
		t.Fatalf("read fs document: %v", err)
	}
	if doc.Location() != "contracts/api.yaml" || string(doc.Raw()) != "openapi: 3.0.3" {
		t.Fatalf("unexpected document %q %q", doc.Location(), doc.Raw())
	}

	path := filepath.Join(t.TempDir(), "api.yaml")
	if err := os.WriteFile(path, openapi.Embedded().Raw(), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err = openapi.ReadDocument(ctx, openapi.SourceFromFile(path), nil)
	if err != nil {
		t.Fatalf("read file document: %v", err)
	}
	if _, err := openapi.Load(ctx, doc); err != nil {
		t.Fatalf("load file document: %v", err)
	}

	if _, err := openapi.ReadDocument(ctx, openapi.SourceFromFS("api.yaml"), nil); err == nil {
		t.Fatalf("expected error without file system")
	}
}

func TestHandler(t *testing.T) {
	spec, err := openapi.LoadEmbedded(context.Background())
	if err != nil {
		t.Fatalf("load embedded: %v", err)
	}
	handler := spec.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var decoded map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(decoded["openapi"].(string), "3.0") {
		t.Fatalf("unexpected openapi version %v", decoded["openapi"])
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/openapi.json", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
