package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/leapion/internal/cli/output"
	"github.com/leapstack-labs/leapion/pkg/macro"
)

// statusResponse reports server health and the state of the last
// catalog load.
type statusResponse struct {
	Status     string `json:"status"`
	InstanceID string `json:"instance_id"`
	BuildID    string `json:"build_id"`
	CatalogDir string `json:"catalog_dir"`
	Watch      bool   `json:"watch"`
	Macros     int    `json:"macros"`
	LoadedAt   string `json:"loaded_at"`
	Error      string `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleStatus reports the server instance and catalog load state.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	snap := s.current()

	resp := statusResponse{
		Status:     "ok",
		InstanceID: s.instanceID,
		BuildID:    snap.buildID,
		CatalogDir: s.cfg.CatalogDir,
		Watch:      s.cfg.Watch,
		Macros:     snap.table.Len(),
		LoadedAt:   snap.loadedAt.UTC().Format(time.RFC3339),
	}
	if snap.err != nil {
		resp.Status = "degraded"
		resp.Error = snap.err.Error()
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleMacros lists every macro in the table. The payload matches
// "leapion list --output json".
func (s *Server) handleMacros(w http.ResponseWriter, _ *http.Request) {
	snap := s.current()

	refs := snap.table.AllMacros()
	entries := make([]output.MacroEntry, 0, len(refs))
	for _, ref := range refs {
		name, _ := ref.Name()
		entries = append(entries, output.NewMacroEntry(ref, snap.files[name]))
	}

	s.writeJSON(w, http.StatusOK, output.NewListOutput(entries))
}

// handleMacro resolves one macro by name or by address.
func (s *Server) handleMacro(w http.ResponseWriter, r *http.Request) {
	idText := chi.URLParam(r, "id")
	snap := s.current()

	ref, ok := snap.table.MacroWithID(macro.ParseID(idText))
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("no macro named or addressed %q in the table", idText))
		return
	}

	name, _ := ref.Name()
	s.writeJSON(w, http.StatusOK, output.NewMacroEntry(ref, snap.files[name]))
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, errorResponse{Error: msg})
}
