package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ramux/ra-multiplex/internal/config"
	"github.com/ramux/ra-multiplex/internal/logger"
	"github.com/ramux/ra-multiplex/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestConfigDefaultsCommand(t *testing.T) {
	out, _, err := execute(t, context.Background(), "config", "defaults")
	require.NoError(t, err)
	assert.Equal(t, string(config.DefaultsTOML()), out)
}

func TestConfigCheckCommand(t *testing.T) {
	path := writeConfig(t, "gc_interval = 3\nlog_mode = \"syslog\"\n")

	out, stderr, err := execute(t, context.Background(), "config", "check", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "gc_interval = 3\n")
	assert.Contains(t, out, "instance_timeout = 300\n")
	assert.Contains(t, stderr, "warning: log_mode")
}

func TestConfigCheckCommandRejectsInvalidFile(t *testing.T) {
	path := writeConfig(t, "gc_interval = 0\n")

	_, _, err := execute(t, context.Background(), "config", "check", "-c", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONFIG_PARSE_FAILED")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, context.Background(), "version")
	require.NoError(t, err)
	assert.Equal(t, "ra-multiplex version: dev\n", out)

	out, _, err = execute(t, context.Background(), "version", "--detailed")
	require.NoError(t, err)
	assert.Contains(t, out, "Commit: unknown")
}

func TestExecuteReportsMissingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")
	var stderr bytes.Buffer

	code := Execute(context.Background(), []string{"--config", path}, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "ERROR ra-multiplex failed")
	assert.Contains(t, stderr.String(), `"error_code": "CONFIG_READ_FAILED"`)
	assert.Contains(t, stderr.String(), `"path": "`+path+`"`)
}

func TestExecuteReportsUnknownField(t *testing.T) {
	path := writeConfig(t, "gc_interval = 5\nlisten_port = 1\n")
	var stderr bytes.Buffer

	code := Execute(context.Background(), []string{"config", "check", "--config", path}, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), `"error_code": "CONFIG_PARSE_FAILED"`)
	assert.Contains(t, stderr.String(), `"field": "listen_port"`)
}

func TestServeMetrics(t *testing.T) {
	metrics.RegisterMetrics()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, err := serveMetrics(ctx, "127.0.0.1:0")
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr.String() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ra_multiplex_config_loads_total")
	assert.Contains(t, string(body), "ra_multiplex_log_records_dropped_total")
}

func TestServeMetricsBadAddress(t *testing.T) {
	_, err := serveMetrics(context.Background(), "not-an-address")
	assert.Error(t, err)
}

func TestRunServerStopsOnCancel(t *testing.T) {
	path := writeConfig(t, "log_filters = \"off\"\n")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, _, err := execute(t, ctx, "--config", path)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}

	assert.ErrorIs(t, logger.Init(), logger.ErrAlreadyInitialized)
}
