// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/halalan/auth"
	"github.com/danielhkuo/halalan/clock"
	"github.com/danielhkuo/halalan/election"
	"github.com/danielhkuo/halalan/middleware"
	"github.com/danielhkuo/halalan/models"
	"github.com/danielhkuo/halalan/notify"
)

// Verification codes are single-use and short-lived.
const codeTTL = 15 * time.Minute

type CandidacyHandler struct {
	db    *sql.DB
	clk   clock.Clock
	queue *notify.Queue
}

func NewCandidacyHandler(db *sql.DB, clk clock.Clock, queue *notify.Queue) *CandidacyHandler {
	return &CandidacyHandler{db: db, clk: clk, queue: queue}
}

// IssueCode handles POST /verification-codes. The plaintext code is
// returned once and only its digest is stored.
func (h *CandidacyHandler) IssueCode(w http.ResponseWriter, r *http.Request) {
	var req models.IssueCodeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.StudentNumber == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "student_number is required")
		return
	}

	var email string
	err := h.db.QueryRow(`
		SELECT email FROM student WHERE student_number = $1
	`, req.StudentNumber).Scan(&email)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Student not found")
		return
	}
	if err != nil {
		slog.Error("failed to query student", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	code, err := auth.GenerateVerificationCode()
	if err != nil {
		slog.Error("failed to generate verification code", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to issue code")
		return
	}
	codeID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate code ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to issue code")
		return
	}

	now := h.clk.Now()
	expiresAt := now.Add(codeTTL)
	_, err = h.db.Exec(`
		INSERT INTO verification_code (id, student_number, code_digest, used, expires_at, created_at)
		VALUES ($1, $2, $3, FALSE, $4, $5)
	`, codeID, req.StudentNumber, auth.HashCode(code), expiresAt, now)
	if err != nil {
		slog.Error("failed to store verification code", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to issue code")
		return
	}

	if h.queue != nil {
		if err := h.queue.Enqueue(notify.Message{
			Recipient: email,
			Template:  notify.TemplateVerificationCode,
			Payload: map[string]string{
				"code":       code,
				"expires_at": expiresAt.Format(time.RFC3339),
			},
		}); err != nil {
			slog.Warn("failed to enqueue verification code", "error", err,
				"student_number", req.StudentNumber)
		}
	}

	middleware.JSONResponse(w, http.StatusCreated, models.IssueCodeResponse{
		Code:      code,
		ExpiresAt: expiresAt,
	})
}

// SubmitCandidacy handles POST /elections/{id}/candidacies
func (h *CandidacyHandler) SubmitCandidacy(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	var req models.SubmitCandidacyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.StudentNumber == "" || req.PositionName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "student_number and position_name are required")
		return
	}
	if req.VerificationCode == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "verification_code is required")
		return
	}

	c, err := election.SubmitCandidacy(h.db, electionID, req, h.clk.Now())
	if err != nil {
		middleware.DomainError(w, err)
		return
	}

	slog.Info("candidacy filed",
		"candidacy_id", c.ID, "election_id", electionID,
		"student_number", req.StudentNumber, "position", req.PositionName)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitCandidacyResponse{
		CandidacyID: c.ID,
		Status:      c.Status,
	})
}

// DecideCandidacy handles POST /candidacies/{id}/decision
func (h *CandidacyHandler) DecideCandidacy(w http.ResponseWriter, r *http.Request) {
	candidacyID := r.PathValue("id")

	var req models.DecisionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Decision != models.DecisionApprove && req.Decision != models.DecisionReject {
		middleware.ErrorResponse(w, http.StatusBadRequest, "decision must be approve or reject")
		return
	}

	resp, err := election.DecideCandidacy(h.db, h.queue, candidacyID, req.Decision, req.RejectReason, h.clk.Now())
	if err != nil {
		middleware.DomainError(w, err)
		return
	}

	slog.Info("candidacy decided",
		"candidacy_id", candidacyID, "decision", req.Decision)

	middleware.JSONResponse(w, http.StatusOK, resp)
}
