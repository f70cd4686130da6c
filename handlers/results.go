// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/halalan/clock"
	"github.com/danielhkuo/halalan/election"
	"github.com/danielhkuo/halalan/middleware"
	"github.com/danielhkuo/halalan/models"
	"github.com/danielhkuo/halalan/notify"
)

type ResultsHandler struct {
	db    *sql.DB
	clk   clock.Clock
	queue *notify.Queue
}

func NewResultsHandler(db *sql.DB, clk clock.Clock, queue *notify.Queue) *ResultsHandler {
	return &ResultsHandler{db: db, clk: clk, queue: queue}
}

// GetWinners handles GET /elections/{id}/winners
func (h *ResultsHandler) GetWinners(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	if _, err := election.GetElection(h.db, electionID); err != nil {
		middleware.DomainError(w, err)
		return
	}

	winners, err := election.GetWinners(h.db, electionID)
	if err != nil {
		slog.Error("failed to query winners", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, winners)
}

// GetAnalytics handles GET /elections/{id}/analytics
func (h *ResultsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	analytics, err := election.GetAnalytics(h.db, electionID)
	if err != nil {
		middleware.DomainError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, analytics)
}

// Resolve handles POST /elections/{id}/resolve, the manual counterpart
// of the scheduled resolution job.
func (h *ResultsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	winners, err := election.ResolveWinners(h.db, h.queue, electionID, h.clk.Now())
	if err != nil {
		middleware.DomainError(w, err)
		return
	}

	slog.Info("election resolved", "election_id", electionID, "winners", len(winners))

	middleware.JSONResponse(w, http.StatusOK, models.ResolveResponse{
		ElectionID: electionID,
		Winners:    winners,
	})
}
