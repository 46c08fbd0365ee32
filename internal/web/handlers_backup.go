package web

import (
	"encoding/json"
	"io"
	"net/http"
)

// Imports are capped well above any realistic journal size.
const maxImportBytes = 32 << 20

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.backup.Export(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="trade-journal-backup.json"`)
	writeJSON(w, http.StatusOK, doc)
}

// handleImport applies a backup document as a destructive full
// replace. The client must pass confirm=true after warning the user;
// without it the request is refused before anything is parsed.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "import replaces all data; repeat with confirm=true", "confirm_required")
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body", "bad_request")
		return
	}
	doc, err := s.backup.Decode(r.Context(), raw)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.backup.Import(r.Context(), doc); err != nil {
		writeDomainError(w, err)
		return
	}
	s.hub.Broadcast("refresh")
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "imported",
		"trades": len(doc.Trades),
	})
}

type gistRequest struct {
	Token  string `json:"token"`
	GistID string `json:"gistId"`
}

func (s *Server) handleGistPush(w http.ResponseWriter, r *http.Request) {
	var req gistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", "bad_request")
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "gist token required", "bad_request")
		return
	}
	gistID, err := s.gistSync.Push(r.Context(), req.Token, req.GistID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"gistId": gistID})
}

func (s *Server) handleGistPull(w http.ResponseWriter, r *http.Request) {
	var req gistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", "bad_request")
		return
	}
	if req.Token == "" || req.GistID == "" {
		writeError(w, http.StatusBadRequest, "gist token and id required", "bad_request")
		return
	}
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "restore replaces all data; repeat with confirm=true", "confirm_required")
		return
	}
	doc, err := s.gistSync.Pull(r.Context(), req.Token, req.GistID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.hub.Broadcast("refresh")
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "restored",
		"trades": len(doc.Trades),
	})
}

func (s *Server) handleListOptions(w http.ResponseWriter, r *http.Request) {
	setups, err := s.options.ListSetups(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	symbols, err := s.options.ListSymbols(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if setups == nil {
		setups = []string{}
	}
	if symbols == nil {
		symbols = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"setups": setups, "symbols": symbols})
}

func (s *Server) handleReplaceOptions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Setups  []string `json:"setups"`
		Symbols []string `json:"symbols"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", "bad_request")
		return
	}
	if req.Setups != nil {
		if err := s.options.ReplaceSetups(r.Context(), req.Setups); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	if req.Symbols != nil {
		if err := s.options.ReplaceSymbols(r.Context(), req.Symbols); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
