// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/halalan/models"
	"github.com/danielhkuo/halalan/testutil"
)

// TestConcurrentBallotSubmissions verifies that simultaneous ballots from
// different voters don't corrupt tallies or lose updates
func TestConcurrentBallotSubmissions(t *testing.T) {
	db := testutil.SetupTestDB(t)

	numVoters := 10
	fx := setupBallot(t, db, numVoters)

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(voterIdx int) {
			defer wg.Done()

			choice := fx.president1
			if voterIdx%2 == 1 {
				choice = fx.president2
			}

			_, err := CastBallot(db, nil, fx.electionID, models.CastBallotRequest{
				StudentNumber: votersNumber(voterIdx),
				Credential:    "AB12CD3",
				Selections: []models.BallotSelection{
					{PositionName: "President", CandidateID: choice},
					{PositionName: "Senator", CandidateID: fx.senator1},
				},
			}, fx.votingTime)
			if err == nil {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful ballots, got %d", numVoters, successCount.Load())
	}

	// Conservation: tallies, ledger rows and analytics agree
	var tallySum, ledgerRows, votesCount int
	if err := db.QueryRow(`
		SELECT COALESCE(SUM(votes), 0) FROM candidate WHERE election_id = $1
	`, fx.electionID).Scan(&tallySum); err != nil {
		t.Fatalf("Failed to sum tallies: %v", err)
	}
	if err := db.QueryRow(`
		SELECT COUNT(*) FROM vote_ledger WHERE election_id = $1
	`, fx.electionID).Scan(&ledgerRows); err != nil {
		t.Fatalf("Failed to count ledger: %v", err)
	}
	if err := db.QueryRow(`
		SELECT votes_count FROM election_analytics WHERE election_id = $1
	`, fx.electionID).Scan(&votesCount); err != nil {
		t.Fatalf("Failed to query analytics: %v", err)
	}

	expected := numVoters * 2
	if tallySum != expected || ledgerRows != expected || votesCount != expected {
		t.Errorf("Totals diverged under concurrency: tallies=%d ledger=%d analytics=%d, want %d",
			tallySum, ledgerRows, votesCount, expected)
	}
}

// TestConcurrentDuplicateBallots verifies that when one voter submits
// several ballots at once, exactly one commits
func TestConcurrentDuplicateBallots(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := setupBallot(t, db, 1)
	voter := votersNumber(0)

	numAttempts := 5
	var successCount, duplicateCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func(attempt int) {
			defer wg.Done()

			// Abstain-only ballots write no ledger rows, so nothing but
			// the has-voted guard stands between a racing pair
			req := models.CastBallotRequest{
				StudentNumber:      voter,
				Credential:         "AB12CD3",
				AbstainedPositions: []string{"President", "Senator"},
			}
			_, err := CastBallot(db, nil, fx.electionID, req, fx.votingTime)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, models.ErrDuplicateSubmission):
				duplicateCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 committed ballot, got %d", successCount.Load())
	}
	if int(duplicateCount.Load()) != numAttempts-1 {
		t.Errorf("Expected %d duplicate rejections, got %d", numAttempts-1, duplicateCount.Load())
	}

	// Abstention counters were bumped exactly once per candidate
	var timesAbstained int
	if err := db.QueryRow(`
		SELECT times_abstained FROM candidate WHERE id = $1
	`, fx.president1).Scan(&timesAbstained); err != nil {
		t.Fatalf("Failed to query times_abstained: %v", err)
	}
	if timesAbstained != 1 {
		t.Errorf("Expected times_abstained 1, got %d (duplicate ballots double-counted)", timesAbstained)
	}

	var abstainCount int
	if err := db.QueryRow(`
		SELECT abstain_count FROM election_analytics WHERE election_id = $1
	`, fx.electionID).Scan(&abstainCount); err != nil {
		t.Fatalf("Failed to query analytics: %v", err)
	}
	if abstainCount != 0 {
		t.Errorf("Expected abstain_count 0 for whole-position abstentions, got %d", abstainCount)
	}
}
