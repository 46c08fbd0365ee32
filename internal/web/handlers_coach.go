package web

import (
	"net/http"
)

func (s *Server) handleCoachStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"available": s.coach.Available()})
}

// handleCoach runs behavioral analysis over the requester's visible
// trades. The usecase enforces the history cap and request timeout.
func (s *Server) handleCoach(w http.ResponseWriter, r *http.Request) {
	trades, err := s.scopedTrades(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if len(trades) == 0 {
		writeError(w, http.StatusBadRequest, "no trades to analyze", "no_trades")
		return
	}

	commentary, err := s.coach.Analyze(r.Context(), trades)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"commentary": commentary})
}
