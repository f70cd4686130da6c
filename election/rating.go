// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/halalan/models"
)

var starColumns = map[int]string{
	1: "one_star",
	2: "two_star",
	3: "three_star",
	4: "four_star",
	5: "five_star",
}

// RateCandidates records one voter's star ratings for candidates of an
// election. A student rates at most once per election; the star
// histogram, rating average and times-rated counter update in a single
// transaction alongside the tracker row that enforces the once-only rule.
func RateCandidates(db *sql.DB, electionID string, req models.RateCandidatesRequest, now time.Time) error {
	e, err := GetElection(db, electionID)
	if err != nil {
		return err
	}

	if !votingOpen(e, now) {
		return models.PhaseViolation("rating is open during the voting period only")
	}

	var eligible bool
	err = db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM eligible
			WHERE election_id = $1 AND student_number = $2
		)
	`, electionID, req.StudentNumber).Scan(&eligible)
	if err != nil {
		return fmt.Errorf("failed to check eligibility: %w", err)
	}
	if !eligible {
		return models.NotEligible("student is not in this election's eligibility registry")
	}

	var rated bool
	err = db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM rating_tracker
			WHERE election_id = $1 AND student_number = $2
		)
	`, electionID, req.StudentNumber).Scan(&rated)
	if err != nil {
		return fmt.Errorf("failed to check rating tracker: %w", err)
	}
	if rated {
		return models.DuplicateSubmission("ratings were already submitted for this election")
	}

	if len(req.Stars) == 0 {
		return models.InvalidInput("no candidates named in the rating submission")
	}
	for candidateID, stars := range req.Stars {
		if stars < 1 || stars > 5 {
			return models.InvalidInput(fmt.Sprintf("stars for %s must be 1 to 5, got %d", candidateID, stars))
		}
		var exists bool
		err := db.QueryRow(`
			SELECT EXISTS(
				SELECT 1 FROM candidate WHERE id = $1 AND election_id = $2
			)
		`, candidateID, electionID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check candidate: %w", err)
		}
		if !exists {
			return models.NotFound("candidate " + candidateID + " does not exist in this election")
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for candidateID, stars := range req.Stars {
		col := starColumns[stars]
		_, err = tx.Exec(fmt.Sprintf(`
			UPDATE candidate
			SET %s = %s + 1, times_rated = times_rated + 1
			WHERE id = $1
		`, col, col), candidateID)
		if err != nil {
			return fmt.Errorf("failed to record rating: %w", err)
		}

		_, err = tx.Exec(`
			UPDATE candidate
			SET rating = (one_star + 2.0*two_star + 3.0*three_star + 4.0*four_star + 5.0*five_star) / times_rated
			WHERE id = $1 AND times_rated > 0
		`, candidateID)
		if err != nil {
			return fmt.Errorf("failed to update rating average: %w", err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO rating_tracker (election_id, student_number, created_at)
		VALUES ($1, $2, $3)
	`, electionID, req.StudentNumber, now)
	if err != nil {
		return fmt.Errorf("failed to insert rating tracker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ratings: %w", err)
	}

	slog.Info("ratings submitted",
		"election_id", electionID, "student", req.StudentNumber, "candidates", len(req.Stars))

	return nil
}
