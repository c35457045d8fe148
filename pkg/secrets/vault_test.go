package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vaultServer(t *testing.T, failures int32, body string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		assert.Equal(t, "token", r.Header.Get("X-Vault-Token"))
		assert.Equal(t, "/v1/secret/data/traveltogether", r.URL.Path)
		if n <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testConfig(addr string) VaultConfig {
	return VaultConfig{
		Enabled:   true,
		Addr:      addr,
		Token:     "token",
		Mount:     "secret",
		Path:      "traveltogether",
		KVVersion: 2,
		Timeout:   time.Second,
	}
}

func TestApplyVaultSecrets_ExportsKnownKeys(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_USER", "local")
	t.Setenv("REDIS_PASSWORD", "")

	srv, _ := vaultServer(t, 0, `{"data":{"data":{"DB_PASSWORD":"s3cret","DB_USER":"vault","OTHER":"x"}}}`)

	result, err := ApplyVaultSecrets(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Loaded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "s3cret", os.Getenv("DB_PASSWORD"))
	assert.Equal(t, "local", os.Getenv("DB_USER"))
}

func TestApplyVaultSecrets_RetriesServerErrors(t *testing.T) {
	t.Setenv("REDIS_PASSWORD", "")

	srv, calls := vaultServer(t, 1, `{"data":{"data":{"REDIS_PASSWORD":"r"}}}`)

	result, err := ApplyVaultSecrets(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Loaded)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestApplyVaultSecrets_DisabledAndIncomplete(t *testing.T) {
	result, err := ApplyVaultSecrets(context.Background(), VaultConfig{})
	require.NoError(t, err)
	assert.False(t, result.Enabled)

	_, err = ApplyVaultSecrets(context.Background(), VaultConfig{Enabled: true, Addr: "http://vault"})
	assert.Error(t, err)
}

func TestBuildVaultURL(t *testing.T) {
	url, err := buildVaultURL("http://vault/", "/secret/", "/app", 1)
	require.NoError(t, err)
	assert.Equal(t, "http://vault/v1/secret/app", url)

	url, err = buildVaultURL("http://vault", "secret", "app", 2)
	require.NoError(t, err)
	assert.Equal(t, "http://vault/v1/secret/data/app", url)
}
