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

type PartyListHandler struct {
	db    *sql.DB
	clk   clock.Clock
	queue *notify.Queue
}

func NewPartyListHandler(db *sql.DB, clk clock.Clock, queue *notify.Queue) *PartyListHandler {
	return &PartyListHandler{db: db, clk: clk, queue: queue}
}

// SubmitPartyList handles POST /elections/{id}/party-lists
func (h *PartyListHandler) SubmitPartyList(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	var req models.SubmitPartyListRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	pl, err := election.SubmitPartyList(h.db, electionID, req, h.clk.Now())
	if err != nil {
		middleware.DomainError(w, err)
		return
	}

	slog.Info("party list filed",
		"party_list_id", pl.ID, "election_id", electionID, "name", req.Name)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitPartyListResponse{
		PartyListID: pl.ID,
		Status:      pl.Status,
	})
}

// DecidePartyList handles POST /party-lists/{id}/decision
func (h *PartyListHandler) DecidePartyList(w http.ResponseWriter, r *http.Request) {
	partyListID := r.PathValue("id")

	var req models.DecisionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Decision != models.DecisionApprove && req.Decision != models.DecisionReject {
		middleware.ErrorResponse(w, http.StatusBadRequest, "decision must be approve or reject")
		return
	}

	resp, err := election.DecidePartyList(h.db, h.queue, partyListID, req.Decision, req.RejectReason)
	if err != nil {
		middleware.DomainError(w, err)
		return
	}

	slog.Info("party list decided",
		"party_list_id", partyListID, "decision", req.Decision)

	middleware.JSONResponse(w, http.StatusOK, resp)
}
