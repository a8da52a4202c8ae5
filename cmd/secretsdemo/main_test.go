package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vinr.eu/secretsdemo/internal/config"
	"vinr.eu/secretsdemo/internal/mockstore"
)

func localEnv(t *testing.T, endpoint string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MODE", config.ModeLocal)
	t.Setenv("AWS_ENDPOINT_URL", endpoint)
	t.Setenv("AWS_CONFIG_FILE", dir+"/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", dir+"/credentials")
	t.Setenv("LOG_LEVEL", "error")
	for _, key := range []string{"AWS_PROFILE", "SECRETSDEMO_MODE", "SECRETSDEMO_AWS_ENDPOINT_URL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommandPrintsSecret(t *testing.T) {
	store, err := mockstore.NewStore(mockstore.Seed{
		Secrets: map[string]string{config.DefaultSecretID: `{"username":"admin","password":"s3cr3t"}`},
	}, mockstore.WithRegion(config.DefaultRegion))
	require.NoError(t, err)
	srv := httptest.NewServer(mockstore.NewServer(store).Handler())
	defer srv.Close()
	localEnv(t, srv.URL)

	stdout, _, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, stdout, "username: admin\npassword: s3cr3t\n")
	assert.Contains(t, stdout, "Successfully retrieved the secret")
}

func TestRootCommandFailsOnMissingSecret(t *testing.T) {
	store, err := mockstore.NewStore(mockstore.Seed{})
	require.NoError(t, err)
	srv := httptest.NewServer(mockstore.NewServer(store).Handler())
	defer srv.Close()
	localEnv(t, srv.URL)

	stdout, stderr, err := execute(t)
	require.Error(t, err)
	assert.Contains(t, stderr, "Error retrieving secret:")
	assert.Contains(t, stderr, "ResourceNotFoundException")
	assert.NotContains(t, stdout, "Successfully retrieved the secret")
}

func TestRootCommandRejectsArguments(t *testing.T) {
	_, stderr, err := execute(t, "other/secret")
	require.Error(t, err)
	assert.Contains(t, stderr, "unknown command")
}

func TestRootCommandRejectsInvalidMode(t *testing.T) {
	t.Setenv("MODE", "cloud")
	t.Setenv("SECRETSDEMO_MODE", "")
	require.NoError(t, os.Unsetenv("SECRETSDEMO_MODE"))

	_, stderr, err := execute(t)
	assert.ErrorIs(t, err, config.ErrInvalidMode)
	assert.Contains(t, stderr, "Error loading config:")
}

func TestRootCommandLogsToCommandStderr(t *testing.T) {
	store, err := mockstore.NewStore(mockstore.Seed{
		Secrets: map[string]string{config.DefaultSecretID: "not-json-at-all"},
	}, mockstore.WithRegion(config.DefaultRegion))
	require.NoError(t, err)
	srv := httptest.NewServer(mockstore.NewServer(store).Handler())
	defer srv.Close()
	localEnv(t, srv.URL)
	t.Setenv("LOG_LEVEL", "debug")

	stdout, stderr, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Raw secret value: not-json-at-all")
	assert.Contains(t, stderr, "msg=\"config loaded\" app=secretsdemo")
	assert.Contains(t, stderr, "msg=\"showing raw secret value\"")
	assert.NotContains(t, stdout, "level=")
}
