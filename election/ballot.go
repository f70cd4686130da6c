// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/halalan/models"
	"github.com/danielhkuo/halalan/receipt"
)

// CastBallot validates and records one voter's complete ballot: vote
// increments, abstain increments, immutable ledger rows and analytics
// counters commit as a single transaction, and the voter's has-voted
// flag flips in the same transaction so a second ballot is rejected
// before any mutation.
//
// Counter updates are relative in-SQL increments (votes = votes + 1),
// so concurrent ballots from different voters cannot lose updates.
//
// The receipt is rendered after commit; a rendering or storage failure
// degrades to an empty receipt URL and never invalidates the vote.
func CastBallot(db *sql.DB, receipts *receipt.Service, electionID string, req models.CastBallotRequest, now time.Time) (*models.CastBallotResponse, error) {
	e, err := GetElection(db, electionID)
	if err != nil {
		return nil, err
	}

	if !votingOpen(e, now) {
		return nil, models.PhaseViolation("voting is open " +
			e.VotingStart.Format(time.RFC3339) + " to " + e.VotingEnd.Format(time.RFC3339))
	}
	// Resolution can fire at the exact voting-end instant; once it has,
	// no further ballots are accepted even inside the window.
	if e.Status == models.ElectionFinished {
		return nil, models.PhaseViolation("election results are already resolved")
	}

	if err := AuthenticateVoter(db, electionID, req.StudentNumber, req.Credential); err != nil {
		return nil, err
	}

	voter, err := getStudent(db, req.StudentNumber)
	if err != nil {
		return nil, err
	}

	// Resolve every named candidate up front so an invalid selection
	// rejects the ballot before any mutation.
	var picks []pick
	abstainSlots := 0
	seen := make(map[string]bool)
	for _, sel := range req.Selections {
		if sel.CandidateID == models.AbstainSentinel {
			abstainSlots++
			continue
		}
		if seen[sel.CandidateID] {
			return nil, models.InvalidInput("candidate " + sel.CandidateID + " appears more than once on the ballot")
		}
		seen[sel.CandidateID] = true
		var positionName, studentNumber string
		err := db.QueryRow(`
			SELECT position_name, student_number FROM candidate
			WHERE id = $1 AND election_id = $2
		`, sel.CandidateID, electionID).Scan(&positionName, &studentNumber)
		if err == sql.ErrNoRows {
			return nil, models.NotFound("candidate " + sel.CandidateID + " does not exist in this election")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query candidate: %w", err)
		}
		if sel.PositionName != "" && sel.PositionName != positionName {
			return nil, models.NotFound("candidate " + sel.CandidateID + " is not running for " + sel.PositionName)
		}
		picks = append(picks, pick{
			candidateID:   sel.CandidateID,
			positionName:  positionName,
			candidateName: studentNumber,
		})
	}
	abstained := make(map[string]bool)
	for _, position := range req.AbstainedPositions {
		if abstained[position] {
			return nil, models.InvalidInput("position " + position + " is abstained more than once")
		}
		abstained[position] = true
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The flag flip is also the duplicate guard: the conditional UPDATE
	// holds the row lock, so a concurrent ballot from the same voter
	// matches zero rows and is rejected before any mutation.
	res, err := tx.Exec(`
		UPDATE eligible SET has_voted = TRUE
		WHERE election_id = $1 AND student_number = $2 AND has_voted = FALSE
	`, electionID, req.StudentNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to set voting flag: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to read voting flag result: %w", err)
	} else if n == 0 {
		return nil, models.DuplicateSubmission("a ballot was already cast for this election")
	}

	for _, position := range req.AbstainedPositions {
		_, err = tx.Exec(`
			UPDATE candidate SET times_abstained = times_abstained + 1
			WHERE election_id = $1 AND position_name = $2
		`, electionID, position)
		if err != nil {
			return nil, fmt.Errorf("failed to record abstention for %s: %w", position, err)
		}
	}

	for _, p := range picks {
		_, err = tx.Exec(`
			UPDATE candidate SET votes = votes + 1 WHERE id = $1
		`, p.candidateID)
		if err != nil {
			return nil, fmt.Errorf("failed to increment votes: %w", err)
		}

		_, err = tx.Exec(`
			INSERT INTO vote_ledger
				(id, election_id, voter_student_number, candidate_id, course_code, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.NewString(), electionID, req.StudentNumber, p.candidateID, voter.CourseCode, now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert ledger entry: %w", err)
		}
	}

	if len(picks) > 0 {
		_, err = tx.Exec(`
			UPDATE election_analytics SET votes_count = votes_count + $1
			WHERE election_id = $2
		`, len(picks), electionID)
		if err != nil {
			return nil, fmt.Errorf("failed to update vote analytics: %w", err)
		}
	}
	if abstainSlots > 0 {
		_, err = tx.Exec(`
			UPDATE election_analytics SET abstain_count = abstain_count + $1
			WHERE election_id = $2
		`, abstainSlots, electionID)
		if err != nil {
			return nil, fmt.Errorf("failed to update abstain analytics: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ballot: %w", err)
	}

	slog.Info("ballot cast",
		"election_id", electionID, "voter", req.StudentNumber,
		"votes", len(picks), "abstain_slots", abstainSlots,
		"abstained_positions", len(req.AbstainedPositions))

	receiptURL := generateReceipt(db, receipts, e, voter, now, picks2lines(picks, req.AbstainedPositions, abstainSlots))

	return &models.CastBallotResponse{
		VotesRecorded: len(picks),
		Abstentions:   abstainSlots + len(req.AbstainedPositions),
		ReceiptURL:    receiptURL,
		Message:       "Ballot submitted successfully",
	}, nil
}

// pick is one resolved candidate selection.
type pick struct {
	candidateID   string
	positionName  string
	candidateName string
}

// picks2lines converts the committed selections into receipt line data.
func picks2lines(picks []pick, abstainedPositions []string, abstainSlots int) map[string]string {
	data := make(map[string]string)
	for i, p := range picks {
		data[fmt.Sprintf("selection_%d", i+1)] = p.positionName + ": " + p.candidateName
	}
	for i, pos := range abstainedPositions {
		data[fmt.Sprintf("abstained_%d", i+1)] = pos
	}
	if abstainSlots > 0 {
		data["abstained_slots"] = fmt.Sprintf("%d", abstainSlots)
	}
	return data
}

// generateReceipt renders and stores the human-readable receipt after
// the ballot committed. Every failure path logs and returns an empty
// URL; the vote is already durable.
func generateReceipt(db *sql.DB, receipts *receipt.Service, e *models.Election, voter *models.Student, now time.Time, lines map[string]string) string {
	receiptID := uuid.NewString()
	var url string

	if receipts != nil {
		lines["election"] = e.Name
		lines["voter"] = voter.FirstName + " " + voter.LastName
		lines["cast_at"] = now.Format(time.RFC3339)

		var err error
		url, err = receipts.Generate(receipt.KindBallot, lines, e.ID+"/"+receiptID)
		if err != nil {
			slog.Warn("receipt generation failed; vote stands",
				"error", err, "election_id", e.ID, "voter", voter.StudentNumber)
			url = ""
		}
	}

	_, err := db.Exec(`
		INSERT INTO voting_receipt (id, election_id, student_number, receipt_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, receiptID, e.ID, voter.StudentNumber, url, now)
	if err != nil {
		slog.Warn("failed to persist receipt record", "error", err, "election_id", e.ID)
	}

	return url
}
