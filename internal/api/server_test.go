package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapion/internal/cli/output"
	"github.com/leapstack-labs/leapion/internal/testutil"
	"github.com/leapstack-labs/leapion/pkg/macro"
)

func writeCatalogFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// newTestServer builds a server over a temp catalog directory and
// returns it with the directory for later mutation.
func newTestServer(t *testing.T, files map[string]string) (*Server, string) {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		writeCatalogFile(t, dir, name, content)
	}

	s, err := NewServer(t.Context(), Config{
		Addr:       ":0",
		CatalogDir: dir,
		Logger:     testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	return s, dir
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestServer_Status(t *testing.T) {
	s, dir := newTestServer(t, map[string]string{
		"greetings.star": `macro(name = "greet", body = "hello")`,
	})

	rec := get(t, s, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var resp statusResponse
	decodeJSON(t, rec, &resp)

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, dir, resp.CatalogDir)
	assert.Equal(t, macro.NumSystemMacros+1, resp.Macros)
	assert.Empty(t, resp.Error)
	assert.NotEmpty(t, resp.LoadedAt)

	_, err := uuid.Parse(resp.InstanceID)
	assert.NoError(t, err, "instance_id should be a UUID")
	_, err = uuid.Parse(resp.BuildID)
	assert.NoError(t, err, "build_id should be a UUID")
}

func TestServer_ListMacros(t *testing.T) {
	s, dir := newTestServer(t, map[string]string{
		"greetings.star": `macro(name = "greet", body = sexp(symbol("hello"), var("who")), params = [param("who")])`,
		"shouting.star":  `macro(name = "shout", body = "LOUD")`,
	})

	rec := get(t, s, "/api/macros")
	require.Equal(t, http.StatusOK, rec.Code)

	var list output.ListOutput
	decodeJSON(t, rec, &list)

	assert.Equal(t, macro.NumSystemMacros+2, list.Summary.Total)
	assert.Equal(t, macro.NumSystemMacros, list.Summary.System)
	assert.Equal(t, 2, list.Summary.User)
	assert.Equal(t, 2, list.Summary.ByKind["template"])

	require.Len(t, list.Macros, macro.NumSystemMacros+2)
	assert.Equal(t, 0, list.Macros[0].Address)
	assert.Equal(t, "none", list.Macros[0].Name)
	assert.True(t, list.Macros[0].System)

	greet := list.Macros[macro.FirstUserMacroID]
	assert.Equal(t, "greet", greet.Name)
	assert.False(t, greet.System)
	assert.Equal(t, filepath.Join(dir, "greetings.star"), greet.SourceFile)
}

func TestServer_GetMacro(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		wantStatus  int
		wantName    string
		wantAddress int
		wantSystem  bool
		wantErr     string
	}{
		{
			name:        "user macro by name",
			path:        "/api/macros/greet",
			wantStatus:  http.StatusOK,
			wantName:    "greet",
			wantAddress: macro.FirstUserMacroID,
		},
		{
			name:        "system macro by address",
			path:        "/api/macros/0",
			wantStatus:  http.StatusOK,
			wantName:    "none",
			wantAddress: 0,
			wantSystem:  true,
		},
		{
			name:        "system macro by name",
			path:        "/api/macros/make_string",
			wantStatus:  http.StatusOK,
			wantName:    "make_string",
			wantAddress: 2,
			wantSystem:  true,
		},
		{
			name:       "unknown name",
			path:       "/api/macros/nope",
			wantStatus: http.StatusNotFound,
			wantErr:    "no macro",
		},
		{
			name:       "address out of range",
			path:       "/api/macros/99",
			wantStatus: http.StatusNotFound,
			wantErr:    "no macro",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, map[string]string{
				"greetings.star": `macro(name = "greet", body = "hello")`,
			})

			rec := get(t, s, tt.path)
			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantErr != "" {
				var resp errorResponse
				decodeJSON(t, rec, &resp)
				assert.Contains(t, resp.Error, tt.wantErr)
				return
			}

			var entry output.MacroEntry
			decodeJSON(t, rec, &entry)
			assert.Equal(t, tt.wantName, entry.Name)
			assert.Equal(t, tt.wantAddress, entry.Address)
			assert.Equal(t, tt.wantSystem, entry.System)
		})
	}
}

func TestNewServer_LoadErrorFailsStartup(t *testing.T) {
	dir := t.TempDir()
	writeCatalogFile(t, dir, "bad.star", `macro(`)

	_, err := NewServer(t.Context(), Config{
		Addr:       ":0",
		CatalogDir: dir,
		Logger:     testutil.NewTestLogger(t),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.star")
}

func TestServer_ReloadKeepsServingOnError(t *testing.T) {
	s, dir := newTestServer(t, map[string]string{
		"greetings.star": `macro(name = "greet", body = "hello")`,
	})
	firstBuild := s.current().buildID

	// A broken file fails the reload but the old table stays live.
	writeCatalogFile(t, dir, "broken.star", `macro(name = "bonus", body = undefined)`)
	require.Error(t, s.reload(t.Context()))

	rec := get(t, s, "/api/macros")
	require.Equal(t, http.StatusOK, rec.Code)
	var list output.ListOutput
	decodeJSON(t, rec, &list)
	assert.Equal(t, macro.NumSystemMacros+1, list.Summary.Total)

	rec = get(t, s, "/api/status")
	var status statusResponse
	decodeJSON(t, rec, &status)
	assert.Equal(t, "degraded", status.Status)
	assert.Contains(t, status.Error, "broken.star")
	assert.Equal(t, firstBuild, status.BuildID, "failed reload keeps the last good build")

	// Fixing the file brings the next reload back.
	writeCatalogFile(t, dir, "broken.star", `macro(name = "bonus", body = "fixed")`)
	require.NoError(t, s.reload(t.Context()))

	rec = get(t, s, "/api/macros")
	decodeJSON(t, rec, &list)
	assert.Equal(t, macro.NumSystemMacros+2, list.Summary.Total)

	rec = get(t, s, "/api/status")
	status = statusResponse{}
	decodeJSON(t, rec, &status)
	assert.Equal(t, "ok", status.Status)
	assert.Empty(t, status.Error)
	assert.NotEqual(t, firstBuild, status.BuildID, "successful reload gets a new build id")
}
