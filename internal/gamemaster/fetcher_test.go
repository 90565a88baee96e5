package gamemaster_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/raidrank/internal/gamemaster"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_InstallsSnapshot(t *testing.T) {
	body, err := os.ReadFile("testdata/gamemaster.json")
	require.NoError(t, err)
	srv := serve(t, http.StatusOK, string(body))

	dest := filepath.Join(t.TempDir(), "gamemaster.json")
	f := gamemaster.NewFetcher(srv.Client(), srv.URL, dest, zaptest.NewLogger(t))
	res, err := f.Fetch(context.Background())
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, got)
	assert.Equal(t, gamemaster.Digest(body), res.Digest)
	assert.Len(t, res.Digest, 64)
	assert.Equal(t, 25, res.Records)
	assert.Equal(t, len(body), res.Bytes)
	assert.Equal(t, dest, res.Path)
}

func TestFetch_FailureLeavesExistingSnapshot(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"server error": {http.StatusInternalServerError, `[{"templateId": "V0001_POKEMON_BULBASAUR"}]`},
		"not json":     {http.StatusOK, `<html>`},
		"not an array": {http.StatusOK, `{"templateId": "V0001_POKEMON_BULBASAUR"}`},
		"no records":   {http.StatusOK, `[{"foo": 1}]`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			dest := filepath.Join(dir, "gamemaster.json")
			require.NoError(t, os.WriteFile(dest, []byte(`["previous"]`), 0644))

			srv := serve(t, tc.status, tc.body)
			f := gamemaster.NewFetcher(srv.Client(), srv.URL, dest, zaptest.NewLogger(t))
			_, err := f.Fetch(context.Background())
			require.Error(t, err)

			got, err := os.ReadFile(dest)
			require.NoError(t, err)
			assert.Equal(t, `["previous"]`, string(got))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}

func TestFetch_ContextCancelled(t *testing.T) {
	srv := serve(t, http.StatusOK, `[{"templateId": "x"}]`)
	dest := filepath.Join(t.TempDir(), "gamemaster.json")
	f := gamemaster.NewFetcher(srv.Client(), srv.URL, dest, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Fetch(ctx)
	require.ErrorIs(t, err, context.Canceled)
	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
}

func TestDigest_Deterministic(t *testing.T) {
	assert.Equal(t, gamemaster.Digest([]byte("abc")), gamemaster.Digest([]byte("abc")))
	assert.NotEqual(t, gamemaster.Digest([]byte("abc")), gamemaster.Digest([]byte("abd")))
}
