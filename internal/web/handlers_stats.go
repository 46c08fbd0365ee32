package web

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	trades, err := s.scopedTrades(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.metrics.Aggregate(trades))
}

func (s *Server) handleEquity(w http.ResponseWriter, r *http.Request) {
	trades, err := s.scopedTrades(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	user := currentUser(r)
	curve := s.metrics.EquityCurve(trades, user.InitialBalance, user.UseInitialBalance)
	writeJSON(w, http.StatusOK, curve)
}

func (s *Server) handleHourly(w http.ResponseWriter, r *http.Request) {
	trades, err := s.scopedTrades(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.metrics.HourlyWinRate(trades))
}

func (s *Server) handleEmotions(w http.ResponseWriter, r *http.Request) {
	trades, err := s.scopedTrades(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.metrics.EmotionPnl(trades))
}
