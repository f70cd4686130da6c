// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/halalan/auth"
	"github.com/danielhkuo/halalan/models"
	"github.com/danielhkuo/halalan/notify"
)

// SubmitCandidacy validates and records one certificate-of-candidacy
// filing. Checks run in a fixed order and the first violated rule wins:
// filing window, eligibility, disciplinary block, enrollment status,
// verification code, duplicate filing, party-list position capacity.
// On success the candidacy is persisted with status pending and the
// verification code is consumed, atomically.
func SubmitCandidacy(db *sql.DB, electionID string, req models.SubmitCandidacyRequest, now time.Time) (*models.Candidacy, error) {
	e, err := GetElection(db, electionID)
	if err != nil {
		return nil, err
	}

	if !filingOpen(e, now) {
		return nil, models.PhaseViolation("candidacy filing closed at " + e.FilingEnd.Format(time.RFC3339))
	}

	var eligible bool
	err = db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM eligible
			WHERE election_id = $1 AND student_number = $2
		)
	`, electionID, req.StudentNumber).Scan(&eligible)
	if err != nil {
		return nil, fmt.Errorf("failed to check eligibility: %w", err)
	}
	if !eligible {
		return nil, models.NotEligible("student is not in this election's eligibility registry")
	}

	var blocked bool
	err = db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM incident_report
			WHERE student_number = $1 AND status = 'open'
		)
	`, req.StudentNumber).Scan(&blocked)
	if err != nil {
		return nil, fmt.Errorf("failed to check incident reports: %w", err)
	}
	if blocked {
		return nil, models.StudentBlocked("student has an open incident report")
	}

	student, err := getStudent(db, req.StudentNumber)
	if err != nil {
		return nil, err
	}
	if student.EnrollmentStatus != models.EnrollmentContinuing {
		return nil, models.NotContinuing("student enrollment status is not continuing")
	}

	codeID, err := matchLiveCode(db, req.StudentNumber, req.VerificationCode, now)
	if err != nil {
		return nil, err
	}

	var duplicate bool
	err = db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM candidacy
			WHERE election_id = $1 AND student_number = $2 AND status != $3
		)
	`, electionID, req.StudentNumber, models.StatusRejected).Scan(&duplicate)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing candidacy: %w", err)
	}
	if duplicate {
		return nil, models.DuplicateSubmission("a candidacy is already on file for this student")
	}

	if _, err := positionQuantity(db, electionID, req.PositionName); err != nil {
		return nil, err
	}

	var partyListID *string
	if req.PartyListName != "" {
		var id string
		err := db.QueryRow(`
			SELECT id FROM party_list WHERE election_id = $1 AND name = $2
		`, electionID, req.PartyListName).Scan(&id)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to query party list: %w", err)
		}
		if err == nil {
			partyListID = &id

			quantity, err := positionQuantity(db, electionID, req.PositionName)
			if err != nil {
				return nil, err
			}
			var filed int
			err = db.QueryRow(`
				SELECT COUNT(*) FROM candidacy
				WHERE election_id = $1 AND party_list_id = $2
				  AND position_name = $3 AND status != $4
			`, electionID, id, req.PositionName, models.StatusRejected).Scan(&filed)
			if err != nil {
				return nil, fmt.Errorf("failed to count party-list filings: %w", err)
			}
			if filed >= quantity {
				return nil, models.CapacityExceeded(
					fmt.Sprintf("party list already filed %d candidacies for %s (limit %d)",
						filed, req.PositionName, quantity))
			}
		}
	}

	candidacyID, err := auth.GenerateID(16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate candidacy ID: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO candidacy
			(id, election_id, student_number, position_name, party_list_id,
			 motto, platform, display_photo, grades_cert, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, candidacyID, electionID, req.StudentNumber, req.PositionName, partyListID,
		req.Motto, req.Platform, req.DisplayPhotoURL, req.GradesCertURL,
		models.StatusPending, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert candidacy: %w", err)
	}

	_, err = tx.Exec(`UPDATE verification_code SET used = TRUE WHERE id = $1`, codeID)
	if err != nil {
		return nil, fmt.Errorf("failed to consume verification code: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit candidacy: %w", err)
	}

	slog.Info("candidacy filed",
		"candidacy_id", candidacyID, "election_id", electionID,
		"student", req.StudentNumber, "position", req.PositionName)

	return &models.Candidacy{
		ID:            candidacyID,
		ElectionID:    electionID,
		StudentNumber: req.StudentNumber,
		PositionName:  req.PositionName,
		PartyListID:   partyListID,
		Status:        models.StatusPending,
		CreatedAt:     now,
	}, nil
}

// matchLiveCode finds an unused, unexpired verification code for the
// student whose digest matches the presented code, and returns its id.
func matchLiveCode(db *sql.DB, studentNumber, presented string, now time.Time) (string, error) {
	rows, err := db.Query(`
		SELECT id, code_digest FROM verification_code
		WHERE student_number = $1 AND used = FALSE AND expires_at > $2
	`, studentNumber, now)
	if err != nil {
		return "", fmt.Errorf("failed to query verification codes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, digest string
		if err := rows.Scan(&id, &digest); err != nil {
			return "", fmt.Errorf("failed to scan verification code: %w", err)
		}
		if auth.VerifyCode(digest, presented) {
			return id, nil
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to read verification codes: %w", err)
	}
	return "", models.InvalidCode("no live verification code matches")
}

// DecideCandidacy approves or rejects a pending candidacy. Approval
// creates exactly one zero-tally candidate row in the same transaction;
// rejection clears the party affiliation so the student may re-file.
// Re-deciding an already-decided candidacy fails with AlreadyDecided.
func DecideCandidacy(db *sql.DB, q *notify.Queue, candidacyID, decision, rejectReason string, now time.Time) (*models.DecideCandidacyResponse, error) {
	var c models.Candidacy
	err := db.QueryRow(`
		SELECT id, election_id, student_number, position_name, party_list_id,
		       display_photo, status
		FROM candidacy WHERE id = $1
	`, candidacyID).Scan(&c.ID, &c.ElectionID, &c.StudentNumber, &c.PositionName,
		&c.PartyListID, &c.DisplayPhoto, &c.Status)
	if err == sql.ErrNoRows {
		return nil, models.NotFound("candidacy " + candidacyID + " does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query candidacy: %w", err)
	}

	if c.Status != models.StatusPending {
		return nil, models.AlreadyDecided("candidacy is already " + c.Status)
	}

	resp := &models.DecideCandidacyResponse{CandidacyID: candidacyID}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	switch decision {
	case models.DecisionApprove:
		_, err = tx.Exec(`UPDATE candidacy SET status = $1 WHERE id = $2`,
			models.StatusApproved, candidacyID)
		if err != nil {
			return nil, fmt.Errorf("failed to approve candidacy: %w", err)
		}

		candidateID, err := auth.GenerateID(16)
		if err != nil {
			return nil, fmt.Errorf("failed to generate candidate ID: %w", err)
		}
		_, err = tx.Exec(`
			INSERT INTO candidate
				(id, election_id, student_number, position_name, party_list_id,
				 display_photo, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, candidateID, c.ElectionID, c.StudentNumber, c.PositionName,
			c.PartyListID, c.DisplayPhoto, now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert candidate: %w", err)
		}

		resp.Status = models.StatusApproved
		resp.CandidateID = candidateID

	case models.DecisionReject:
		_, err = tx.Exec(`
			UPDATE candidacy
			SET status = $1, reject_reason = $2, party_list_id = NULL
			WHERE id = $3
		`, models.StatusRejected, rejectReason, candidacyID)
		if err != nil {
			return nil, fmt.Errorf("failed to reject candidacy: %w", err)
		}
		resp.Status = models.StatusRejected

	default:
		return nil, fmt.Errorf("unknown decision %q", decision)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit decision: %w", err)
	}

	slog.Info("candidacy decided",
		"candidacy_id", candidacyID, "decision", resp.Status, "student", c.StudentNumber)

	notifyStudent(db, q, c.StudentNumber, notify.TemplateCandidacyStatus, map[string]string{
		"candidacy_id": candidacyID,
		"position":     c.PositionName,
		"status":       resp.Status,
		"reason":       rejectReason,
	})

	return resp, nil
}

// SubmitPartyList records a party-list registration, gated by the same
// filing window as candidacies.
func SubmitPartyList(db *sql.DB, electionID string, req models.SubmitPartyListRequest, now time.Time) (*models.PartyList, error) {
	e, err := GetElection(db, electionID)
	if err != nil {
		return nil, err
	}

	if !filingOpen(e, now) {
		return nil, models.PhaseViolation("party-list registration closed at " + e.FilingEnd.Format(time.RFC3339))
	}

	var exists bool
	err = db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM party_list WHERE election_id = $1 AND name = $2
		)
	`, electionID, req.Name).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check party-list name: %w", err)
	}
	if exists {
		return nil, models.DuplicateSubmission("party list " + req.Name + " is already registered")
	}

	id, err := auth.GenerateID(16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate party-list ID: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO party_list
			(id, election_id, name, description, platforms, email_address, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, id, electionID, req.Name, req.Description, req.Platforms, req.EmailAddress,
		models.StatusPending, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert party list: %w", err)
	}

	slog.Info("party list registered", "party_list_id", id, "election_id", electionID, "name", req.Name)

	return &models.PartyList{
		ID:         id,
		ElectionID: electionID,
		Name:       req.Name,
		Status:     models.StatusPending,
		CreatedAt:  now,
	}, nil
}

// DecidePartyList approves or rejects a pending party list.
func DecidePartyList(db *sql.DB, q *notify.Queue, partyListID, decision, rejectReason string) (*models.SubmitPartyListResponse, error) {
	var status, name, email string
	err := db.QueryRow(`
		SELECT status, name, email_address FROM party_list WHERE id = $1
	`, partyListID).Scan(&status, &name, &email)
	if err == sql.ErrNoRows {
		return nil, models.NotFound("party list " + partyListID + " does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query party list: %w", err)
	}

	if status != models.StatusPending {
		return nil, models.AlreadyDecided("party list is already " + status)
	}

	var newStatus string
	switch decision {
	case models.DecisionApprove:
		newStatus = models.StatusApproved
	case models.DecisionReject:
		newStatus = models.StatusRejected
	default:
		return nil, fmt.Errorf("unknown decision %q", decision)
	}

	_, err = db.Exec(`UPDATE party_list SET status = $1 WHERE id = $2`, newStatus, partyListID)
	if err != nil {
		return nil, fmt.Errorf("failed to update party list: %w", err)
	}

	slog.Info("party list decided", "party_list_id", partyListID, "decision", newStatus)

	if q != nil && email != "" {
		err = q.Enqueue(notify.Message{
			Recipient: email,
			Template:  notify.TemplatePartyListStatus,
			Payload:   map[string]string{"party_list": name, "status": newStatus, "reason": rejectReason},
		})
		if err != nil {
			slog.Warn("failed to enqueue party-list notification", "error", err, "party_list_id", partyListID)
		}
	}

	return &models.SubmitPartyListResponse{PartyListID: partyListID, Status: newStatus}, nil
}

// notifyStudent enqueues a one-time status notification, looking up the
// student's email. Failures are logged only; the decision already stands.
func notifyStudent(db *sql.DB, q *notify.Queue, studentNumber, template string, payload map[string]string) {
	if q == nil {
		return
	}
	student, err := getStudent(db, studentNumber)
	if err != nil {
		slog.Warn("failed to look up student for notification", "error", err, "student", studentNumber)
		return
	}
	if err := q.Enqueue(notify.Message{
		Recipient: student.Email,
		Template:  template,
		Payload:   payload,
	}); err != nil {
		slog.Warn("failed to enqueue notification", "error", err, "student", studentNumber)
	}
}
