package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, Default(), *cfg)
}

func TestLoad_FileEnvAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	content := []byte("listen_addr: \":9000\"\nlookup_delay: 50ms\nstore_driver: sqlite\nstore_dsn: matters.db\nlog_level: debug\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), content, 0o644))

	t.Setenv("MATTERFORM_LOG_LEVEL", "warn")
	t.Setenv("MATTERFORM_PREFILL", "true")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("listen-addr", ":8080", "")
	flags.String("unrelated", "", "")
	require.NoError(t, flags.Parse([]string{"--listen-addr", ":7000"}))

	cfg, err := Load(LoadOptions{Flags: flags})
	require.NoError(t, err)

	require.Equal(t, ":7000", cfg.ListenAddr, "flag beats file")
	require.Equal(t, "warn", cfg.LogLevel, "env beats file")
	require.True(t, cfg.Prefill)
	require.Equal(t, 50*time.Millisecond, cfg.LookupDelay)
	require.Equal(t, "sqlite", cfg.StoreDriver)
	require.Equal(t, "matters.db", cfg.StoreDSN)
	require.Equal(t, DefaultTermsText, cfg.TermsText)
}

func TestLoad_UnchangedFlagKeepsLowerLayers(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MATTERFORM_LISTEN_ADDR", ":6000")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("listen-addr", ":8080", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(LoadOptions{Flags: flags})
	require.NoError(t, err)
	require.Equal(t, ":6000", cfg.ListenAddr)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load(LoadOptions{File: "missing.yml"})
	require.Error(t, err)
}

func TestLoad_RejectsUnknownStoreDriver(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MATTERFORM_STORE_DRIVER", "postgres")
	_, err := Load(LoadOptions{})
	require.ErrorContains(t, err, "store_driver")
}
