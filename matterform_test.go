package matterform_test

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	matterform "github.com/goliatone/go-matterform"
	"github.com/goliatone/go-matterform/pkg/config"
	"github.com/goliatone/go-matterform/pkg/testsupport"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.LookupDelay = 0
	return cfg
}

func TestRuntime_SubmitsThroughStore(t *testing.T) {
	ctx := context.Background()
	rt, err := matterform.NewRuntime(ctx, testConfig(), nil,
		matterform.WithLookupService(testsupport.NewStubService()))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, rt.Close()) })

	ctrl, err := rt.NewController(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctrl.Close() })

	require.NoError(t, ctrl.Load(ctx))
	testsupport.FillValid(t, ctrl)
	require.NoError(t, ctrl.Create(ctx))
	require.NoError(t, ctrl.AcceptTerms(ctx))
	require.True(t, ctrl.Snapshot().Submitted)

	saved, err := rt.Store.List(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Jane Senior", saved[0].Values.SelectedPerson)
	assert.NotEmpty(t, saved[0].ID)
}

func TestRuntime_DefaultMockAndServer(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Prefill = true
	cfg.ThemeVariant = "dark"

	rt, err := matterform.NewRuntime(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, rt.Close()) })

	regions, err := rt.Lookups().Regions(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, regions)
	assert.Equal(t, "dark", rt.Theme.Variant)

	srv, err := rt.NewServer()
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/api/lookups/regions")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/matter")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, srv.Sessions())
}

func TestRuntime_SchemaFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yml")
	require.NoError(t, os.WriteFile(path, []byte("fields: [\n"), 0o600))

	cfg := testConfig()
	cfg.SchemaFile = path
	_, err := matterform.NewRuntime(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "schema file"), err.Error())

	cfg.SchemaFile = filepath.Join(dir, "missing.yml")
	_, err = matterform.NewRuntime(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestRuntime_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.StoreDriver = "postgres"
	_, err := matterform.NewRuntime(context.Background(), cfg, nil)
	require.Error(t, err)

	cfg = testConfig()
	cfg.SessionTTL = -time.Second
	_, err = matterform.NewRuntime(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestEmbeddedFiles(t *testing.T) {
	for _, name := range []string{"page.html", "terms.html"} {
		_, err := fs.Stat(matterform.EmbeddedTemplates(), name)
		require.NoError(t, err, name)
	}
	css, err := fs.ReadFile(matterform.AssetsFS(), "matterform.css")
	require.NoError(t, err)
	assert.Contains(t, string(css), ".mf-page")
}
