package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vinr.eu/secretsdemo/internal/mockstore"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func getSecretValue(t *testing.T, addr, id string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "http://"+addr+"/", strings.NewReader(`{"SecretId":"`+id+`"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-amz-json-1.1")
	req.Header.Set("X-Amz-Target", mockstore.TargetGetSecretValue)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestCommandServesSeedAndDenyListUntilCancelled(t *testing.T) {
	seedPath := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(`
secrets:
  service/test/infra/iduck: '{"username":"admin"}'
  locked: 'never returned'
`), 0o600))
	t.Setenv("MOCKSTORE_DENY", "locked")
	t.Setenv("SECRET_FROM_ENV", "env-value")

	addrCh := make(chan string, 1)
	opts := &options{listening: func(addr string) { addrCh <- addr }}
	cmd := newCommand(opts)
	logs := &syncBuffer{}
	cmd.SetOut(logs)
	cmd.SetArgs([]string{"--addr", "127.0.0.1:0", "--secrets", seedPath})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	var addr string
	select {
	case addr = <-addrCh:
	case err := <-done:
		t.Fatalf("command exited before listening: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("command did not start listening")
	}

	status, out := getSecretValue(t, addr, "service/test/infra/iduck")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, `{"username":"admin"}`, out["SecretString"])

	status, out = getSecretValue(t, addr, "locked")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, mockstore.CodeAccessDenied, out["__type"])

	status, out = getSecretValue(t, addr, "from-env")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "env-value", out["SecretString"])

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("command did not exit after cancellation")
	}
	assert.Contains(t, logs.String(), "mock secrets manager listening")
	assert.Contains(t, logs.String(), "server exiting")
}

func TestCommandFailsOnMissingSeedFile(t *testing.T) {
	cmd := newCommand(&options{})
	cmd.SetOut(&syncBuffer{})
	cmd.SetErr(&syncBuffer{})
	cmd.SetArgs([]string{"--addr", "127.0.0.1:0", "--secrets", filepath.Join(t.TempDir(), "missing.yaml")})

	err := cmd.ExecuteContext(context.Background())
	assert.ErrorIs(t, err, mockstore.ErrReadSeed)
}
