// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/halalan/auth"
	"github.com/danielhkuo/halalan/cliparse"
	"github.com/danielhkuo/halalan/clock"
	"github.com/danielhkuo/halalan/election"
	"github.com/danielhkuo/halalan/middleware"
	"github.com/danielhkuo/halalan/models"
	"github.com/danielhkuo/halalan/notify"
	"github.com/danielhkuo/halalan/schedule"
)

type ElectionHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	clk   clock.Clock
	queue *notify.Queue
	sched *schedule.Scheduler
}

func NewElectionHandler(db *sql.DB, cfg cliparse.Config, clk clock.Clock, queue *notify.Queue, sched *schedule.Scheduler) *ElectionHandler {
	return &ElectionHandler{db: db, cfg: cfg, clk: clk, queue: queue, sched: sched}
}

// CreateElection handles POST /elections
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.OrganizationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "organization_id is required")
		return
	}
	if len(req.Positions) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least one position is required")
		return
	}
	for _, p := range req.Positions {
		if p.Name == "" || p.Quantity < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "positions need a name and a quantity >= 1")
			return
		}
	}

	// All instants live in the canonical timezone; mismatched offsets in
	// the request are normalized so naive handling never reaches the core.
	// Listed in chronological order: the election brackets the inner
	// windows, which run non-decreasing from filing through appeal.
	loc := h.clk.Location()
	windows := []struct {
		name string
		at   time.Time
	}{
		{"election_start", req.ElectionStart.In(loc)},
		{"filing_start", req.FilingStart.In(loc)},
		{"filing_end", req.FilingEnd.In(loc)},
		{"campaign_start", req.CampaignStart.In(loc)},
		{"campaign_end", req.CampaignEnd.In(loc)},
		{"voting_start", req.VotingStart.In(loc)},
		{"voting_end", req.VotingEnd.In(loc)},
		{"appeal_start", req.AppealStart.In(loc)},
		{"appeal_end", req.AppealEnd.In(loc)},
		{"election_end", req.ElectionEnd.In(loc)},
	}
	for i := range windows {
		if windows[i].at.IsZero() {
			middleware.ErrorResponse(w, http.StatusBadRequest, windows[i].name+" is required")
			return
		}
		if i > 0 && windows[i].at.Before(windows[i-1].at) {
			middleware.ErrorResponse(w, http.StatusBadRequest,
				windows[i].name+" must not precede "+windows[i-1].name)
			return
		}
	}

	var requirement string
	err := h.db.QueryRow(`
		SELECT member_requirement FROM organization WHERE id = $1
	`, req.OrganizationID).Scan(&requirement)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Organization not found")
		return
	}
	if err != nil {
		slog.Error("failed to query organization", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	electionID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate election ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	now := h.clk.Now()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO election
			(id, name, organization_id, status, school_year, semester,
			 election_start, election_end, filing_start, filing_end,
			 campaign_start, campaign_end, voting_start, voting_end,
			 appeal_start, appeal_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, electionID, req.Name, req.OrganizationID, models.ElectionOngoing,
		req.SchoolYear, req.Semester,
		windows[0].at, windows[9].at, windows[1].at, windows[2].at,
		windows[3].at, windows[4].at, windows[5].at, windows[6].at,
		windows[7].at, windows[8].at, now)
	if err != nil {
		slog.Error("failed to insert election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	for _, p := range req.Positions {
		positionID, err := auth.GenerateID(16)
		if err != nil {
			slog.Error("failed to generate position ID", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
			return
		}
		_, err = tx.Exec(`
			INSERT INTO position (id, election_id, name, quantity)
			VALUES ($1, $2, $3, $4)
		`, positionID, electionID, p.Name, p.Quantity)
		if err != nil {
			slog.Error("failed to insert position", "error", err, "position", p.Name)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
			return
		}
	}

	_, err = tx.Exec(`
		INSERT INTO election_analytics (election_id, votes_count, abstain_count)
		VALUES ($1, 0, 0)
	`, electionID)
	if err != nil {
		slog.Error("failed to insert analytics row", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	created, err := election.PopulateEligibles(h.db, h.queue, electionID, requirement, now)
	if err != nil {
		slog.Error("failed to populate eligibility registry", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	if err := h.sched.Schedule(electionID, windows[6].at); err != nil {
		slog.Error("failed to schedule resolution", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	slog.Info("election created",
		"election_id", electionID, "name", req.Name, "eligible", created)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateElectionResponse{
		ElectionID:    electionID,
		EligibleCount: created,
	})
}

// GetElection handles GET /elections/{id}
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}

	e, err := election.GetElection(h.db, electionID)
	if err != nil {
		middleware.DomainError(w, err)
		return
	}

	positions, err := election.GetPositions(h.db, electionID)
	if err != nil {
		slog.Error("failed to query positions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ElectionDetail{
		Election:  *e,
		Phase:     election.CurrentPhase(e, h.clk.Now()),
		Positions: positions,
	})
}

// DeleteElection handles DELETE /elections/{id}. Deletion cascades to
// every dependent row and removes the pending resolution job.
func (h *ElectionHandler) DeleteElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}

	res, err := h.db.Exec(`DELETE FROM election WHERE id = $1`, electionID)
	if err != nil {
		slog.Error("failed to delete election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete election")
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}

	if err := h.sched.Cancel(electionID); err != nil {
		slog.Warn("failed to cancel resolution job", "error", err, "election_id", electionID)
	}

	slog.Info("election deleted", "election_id", electionID)
	w.WriteHeader(http.StatusNoContent)
}
