package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/vitos/trade_journal/internal/domain"
	"github.com/vitos/trade_journal/internal/usecase"
)

// scopedTrades loads the trade set the requester may see and applies
// the optional month window and free-text filters from the query
// string. Scope is always applied first.
func (s *Server) scopedTrades(r *http.Request) ([]*domain.Trade, error) {
	user := currentUser(r)

	var trades []*domain.Trade
	var err error
	if user.IsAdmin() {
		trades, err = s.trades.ListTrades(r.Context())
	} else {
		trades, err = s.trades.ListTradesByUser(r.Context(), user.ID)
	}
	if err != nil {
		return nil, err
	}

	q := r.URL.Query()
	if yearStr := q.Get("year"); yearStr != "" {
		year, yerr := strconv.Atoi(yearStr)
		month, merr := strconv.Atoi(q.Get("month"))
		if yerr == nil && merr == nil && month >= 1 && month <= 12 {
			trades = usecase.FilterMonth(trades, year, time.Month(month))
		}
	}
	if text := q.Get("q"); text != "" {
		trades = usecase.FilterText(trades, text)
	}
	return trades, nil
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := s.scopedTrades(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if trades == nil {
		trades = []*domain.Trade{}
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleSubmitTrade(w http.ResponseWriter, r *http.Request) {
	var draft usecase.TradeDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", "bad_request")
		return
	}
	s.submitDraft(w, r, &draft)
}

func (s *Server) handleEditTrade(w http.ResponseWriter, r *http.Request) {
	var draft usecase.TradeDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", "bad_request")
		return
	}
	draft.ID = r.PathValue("id")
	s.submitDraft(w, r, &draft)
}

// submitDraft runs the entry pipeline for create and edit alike. An
// edit of someone else's trade is refused for non-admins; the saved
// record is always stamped with the submitter's id.
func (s *Server) submitDraft(w http.ResponseWriter, r *http.Request, draft *usecase.TradeDraft) {
	user := currentUser(r)

	if draft.ID != "" {
		existing, err := s.trades.GetTrade(r.Context(), draft.ID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			// New record with a client-chosen id; pipeline treats it
			// as a create.
		case err != nil:
			writeDomainError(w, err)
			return
		case existing.UserID != user.ID && !user.IsAdmin():
			writeDomainError(w, domain.ErrForbidden)
			return
		}
	}

	trade, err := s.entries.SubmitTrade(r.Context(), draft, user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.hub.Broadcast("refresh")
	writeJSON(w, http.StatusOK, trade)
}

func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	if err := s.entries.DeleteTrade(r.Context(), r.PathValue("id"), currentUser(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	s.hub.Broadcast("refresh")
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleRiskPreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EntryPrice float64 `json:"entryPrice"`
		StopLoss   float64 `json:"stopLoss"`
		TakeProfit float64 `json:"takeProfit"`
		Size       float64 `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", "bad_request")
		return
	}
	writeJSON(w, http.StatusOK, usecase.Preview(req.EntryPrice, req.StopLoss, req.TakeProfit, req.Size))
}
