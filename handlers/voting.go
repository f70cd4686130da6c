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
	"github.com/danielhkuo/halalan/receipt"
)

type VotingHandler struct {
	db       *sql.DB
	clk      clock.Clock
	receipts *receipt.Service
}

func NewVotingHandler(db *sql.DB, clk clock.Clock, receipts *receipt.Service) *VotingHandler {
	return &VotingHandler{db: db, clk: clk, receipts: receipts}
}

// Authenticate handles POST /elections/{id}/authenticate. It verifies a
// voter's single-use credential without consuming anything.
func (h *VotingHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	var req models.AuthenticateVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.StudentNumber == "" || req.Credential == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "student_number and credential are required")
		return
	}

	if err := election.AuthenticateVoter(h.db, electionID, req.StudentNumber, req.Credential); err != nil {
		middleware.DomainError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]string{
		"message": "Credential verified",
	})
}

// CastBallot handles POST /elections/{id}/ballots
func (h *VotingHandler) CastBallot(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	var req models.CastBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.StudentNumber == "" || req.Credential == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "student_number and credential are required")
		return
	}
	if len(req.Selections) == 0 && len(req.AbstainedPositions) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ballot is empty")
		return
	}

	resp, err := election.CastBallot(h.db, h.receipts, electionID, req, h.clk.Now())
	if err != nil {
		middleware.DomainError(w, err)
		return
	}

	slog.Info("ballot cast",
		"election_id", electionID, "student_number", req.StudentNumber,
		"votes", resp.VotesRecorded, "abstentions", resp.Abstentions)

	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// RateCandidates handles POST /elections/{id}/ratings
func (h *VotingHandler) RateCandidates(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	var req models.RateCandidatesRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.StudentNumber == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "student_number is required")
		return
	}
	if len(req.Stars) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "stars is required")
		return
	}

	if err := election.RateCandidates(h.db, electionID, req, h.clk.Now()); err != nil {
		middleware.DomainError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]string{
		"message": "Ratings recorded",
	})
}
