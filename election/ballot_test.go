// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/danielhkuo/halalan/models"
	"github.com/danielhkuo/halalan/testutil"
)

// ballotFixture is a two-position election in its voting window with
// three candidates and registered voters.
type ballotFixture struct {
	electionID string
	votingTime time.Time
	president1 string
	president2 string
	senator1   string
}

func setupBallot(t *testing.T, db *sql.DB, voters int) ballotFixture {
	t.Helper()

	base := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	times := testutil.ElectionTimes(base)

	orgID := testutil.SeedOrganization(t, db, models.RequirementAny)
	electionID := testutil.SeedElection(t, db, orgID, times)
	testutil.SeedPosition(t, db, electionID, "President", 1)
	testutil.SeedPosition(t, db, electionID, "Senator", 1)

	testutil.SeedStudent(t, db, "2021-10001", "BSCS", models.EnrollmentContinuing)
	testutil.SeedStudent(t, db, "2021-10002", "BSCS", models.EnrollmentContinuing)
	testutil.SeedStudent(t, db, "2021-10003", "BSIT", models.EnrollmentContinuing)

	fx := ballotFixture{
		electionID: electionID,
		votingTime: base.Add(210 * time.Minute),
		president1: testutil.SeedCandidate(t, db, electionID, "2021-10001", "President"),
		president2: testutil.SeedCandidate(t, db, electionID, "2021-10002", "President"),
		senator1:   testutil.SeedCandidate(t, db, electionID, "2021-10003", "Senator"),
	}

	for i := 0; i < voters; i++ {
		number := votersNumber(i)
		testutil.SeedStudent(t, db, number, "BSCS", models.EnrollmentContinuing)
		testutil.SeedEligible(t, db, electionID, number, "AB12CD3")
	}

	return fx
}

func votersNumber(i int) string {
	return "2021-2" + string(rune('0'+i/10)) + string(rune('0'+i%10)) + "00"
}

func TestCastBallot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := setupBallot(t, db, 3)
	voter := votersNumber(0)

	resp, err := CastBallot(db, nil, fx.electionID, models.CastBallotRequest{
		StudentNumber: voter,
		Credential:    "AB12CD3",
		Selections: []models.BallotSelection{
			{PositionName: "President", CandidateID: fx.president1},
			{PositionName: "Senator", CandidateID: fx.senator1},
		},
	}, fx.votingTime)
	if err != nil {
		t.Fatalf("CastBallot failed: %v", err)
	}
	if resp.VotesRecorded != 2 {
		t.Errorf("Expected 2 votes recorded, got %d", resp.VotesRecorded)
	}

	// Tallies incremented
	var votes int
	if err := db.QueryRow(`SELECT votes FROM candidate WHERE id = $1`, fx.president1).Scan(&votes); err != nil {
		t.Fatalf("Failed to query votes: %v", err)
	}
	if votes != 1 {
		t.Errorf("Expected 1 vote for president1, got %d", votes)
	}

	// One ledger row per selection, carrying the voter's course
	var ledger int
	if err := db.QueryRow(`
		SELECT COUNT(*) FROM vote_ledger WHERE election_id = $1 AND voter_student_number = $2
	`, fx.electionID, voter).Scan(&ledger); err != nil {
		t.Fatalf("Failed to count ledger rows: %v", err)
	}
	if ledger != 2 {
		t.Errorf("Expected 2 ledger rows, got %d", ledger)
	}

	// Voting flag flipped
	var hasVoted bool
	if err := db.QueryRow(`
		SELECT has_voted FROM eligible WHERE election_id = $1 AND student_number = $2
	`, fx.electionID, voter).Scan(&hasVoted); err != nil {
		t.Fatalf("Failed to query has_voted: %v", err)
	}
	if !hasVoted {
		t.Error("has_voted should be set after the ballot")
	}

	// Analytics updated
	var votesCount int
	if err := db.QueryRow(`
		SELECT votes_count FROM election_analytics WHERE election_id = $1
	`, fx.electionID).Scan(&votesCount); err != nil {
		t.Fatalf("Failed to query analytics: %v", err)
	}
	if votesCount != 2 {
		t.Errorf("Expected votes_count 2, got %d", votesCount)
	}

	// Second ballot from the same voter is rejected
	_, err = CastBallot(db, nil, fx.electionID, models.CastBallotRequest{
		StudentNumber: voter,
		Credential:    "AB12CD3",
		Selections:    []models.BallotSelection{{CandidateID: fx.president2}},
	}, fx.votingTime)
	if !errors.Is(err, models.ErrDuplicateSubmission) {
		t.Errorf("Expected duplicate submission, got %v", err)
	}
}

func TestCastBallotRejections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := setupBallot(t, db, 3)

	tests := []struct {
		name    string
		req     models.CastBallotRequest
		now     time.Time
		wantErr error
	}{
		{
			name: "before voting opens",
			req: models.CastBallotRequest{
				StudentNumber: votersNumber(0), Credential: "AB12CD3",
				Selections: []models.BallotSelection{{CandidateID: fx.president1}},
			},
			now:     fx.votingTime.Add(-2 * time.Hour),
			wantErr: models.ErrPhaseViolation,
		},
		{
			name: "after voting closes",
			req: models.CastBallotRequest{
				StudentNumber: votersNumber(0), Credential: "AB12CD3",
				Selections: []models.BallotSelection{{CandidateID: fx.president1}},
			},
			now:     fx.votingTime.Add(2 * time.Hour),
			wantErr: models.ErrPhaseViolation,
		},
		{
			name: "wrong credential",
			req: models.CastBallotRequest{
				StudentNumber: votersNumber(0), Credential: "ZZZZZZZ",
				Selections: []models.BallotSelection{{CandidateID: fx.president1}},
			},
			now:     fx.votingTime,
			wantErr: models.ErrInvalidCredential,
		},
		{
			name: "unknown candidate",
			req: models.CastBallotRequest{
				StudentNumber: votersNumber(0), Credential: "AB12CD3",
				Selections: []models.BallotSelection{{CandidateID: "no-such-candidate"}},
			},
			now:     fx.votingTime,
			wantErr: models.ErrNotFound,
		},
		{
			name: "candidate running for a different position",
			req: models.CastBallotRequest{
				StudentNumber: votersNumber(0), Credential: "AB12CD3",
				Selections: []models.BallotSelection{
					{PositionName: "Senator", CandidateID: fx.president1},
				},
			},
			now:     fx.votingTime,
			wantErr: models.ErrNotFound,
		},
		{
			name: "same candidate picked twice",
			req: models.CastBallotRequest{
				StudentNumber: votersNumber(0), Credential: "AB12CD3",
				Selections: []models.BallotSelection{
					{PositionName: "President", CandidateID: fx.president1},
					{PositionName: "President", CandidateID: fx.president1},
				},
			},
			now:     fx.votingTime,
			wantErr: models.ErrInvalidInput,
		},
		{
			name: "same position abstained twice",
			req: models.CastBallotRequest{
				StudentNumber: votersNumber(0), Credential: "AB12CD3",
				AbstainedPositions: []string{"Senator", "Senator"},
			},
			now:     fx.votingTime,
			wantErr: models.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CastBallot(db, nil, fx.electionID, tt.req, tt.now)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}

			// A rejected ballot must leave no trace
			var votes int
			if err := db.QueryRow(`SELECT votes FROM candidate WHERE id = $1`, fx.president1).Scan(&votes); err != nil {
				t.Fatalf("Failed to query votes: %v", err)
			}
			if votes != 0 {
				t.Errorf("Rejected ballot mutated tallies: votes=%d", votes)
			}
		})
	}
}

func TestCastBallotAbstentions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := setupBallot(t, db, 3)
	voter := votersNumber(0)

	// Abstain sentinel for President, whole-position abstention for Senator
	resp, err := CastBallot(db, nil, fx.electionID, models.CastBallotRequest{
		StudentNumber: voter,
		Credential:    "AB12CD3",
		Selections: []models.BallotSelection{
			{PositionName: "President", CandidateID: models.AbstainSentinel},
		},
		AbstainedPositions: []string{"Senator"},
	}, fx.votingTime)
	if err != nil {
		t.Fatalf("CastBallot failed: %v", err)
	}
	if resp.VotesRecorded != 0 {
		t.Errorf("Expected 0 votes recorded, got %d", resp.VotesRecorded)
	}
	if resp.Abstentions != 2 {
		t.Errorf("Expected 2 abstentions, got %d", resp.Abstentions)
	}

	// Every Senator candidate picked up the abstention counter
	var timesAbstained int
	if err := db.QueryRow(`
		SELECT times_abstained FROM candidate WHERE id = $1
	`, fx.senator1).Scan(&timesAbstained); err != nil {
		t.Fatalf("Failed to query times_abstained: %v", err)
	}
	if timesAbstained != 1 {
		t.Errorf("Expected times_abstained 1, got %d", timesAbstained)
	}

	// No ledger rows for an abstain-only ballot
	var ledger int
	if err := db.QueryRow(`
		SELECT COUNT(*) FROM vote_ledger WHERE voter_student_number = $1
	`, voter).Scan(&ledger); err != nil {
		t.Fatalf("Failed to count ledger rows: %v", err)
	}
	if ledger != 0 {
		t.Errorf("Abstain-only ballot should write no ledger rows, got %d", ledger)
	}

	// The once-only rule still holds without any ledger rows
	_, err = CastBallot(db, nil, fx.electionID, models.CastBallotRequest{
		StudentNumber: voter,
		Credential:    "AB12CD3",
		Selections:    []models.BallotSelection{{CandidateID: fx.president1}},
	}, fx.votingTime)
	if !errors.Is(err, models.ErrDuplicateSubmission) {
		t.Errorf("Expected duplicate submission after abstain-only ballot, got %v", err)
	}
}

// TestCastBallotConservation drives several voters through and verifies
// the totals add up: ledger rows equal analytics votes_count equals the
// sum of candidate tallies.
func TestCastBallotConservation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	voters := 6
	fx := setupBallot(t, db, voters)

	choices := []string{fx.president1, fx.president1, fx.president2, fx.president1, fx.president2, fx.president1}
	for i := 0; i < voters; i++ {
		_, err := CastBallot(db, nil, fx.electionID, models.CastBallotRequest{
			StudentNumber: votersNumber(i),
			Credential:    "AB12CD3",
			Selections: []models.BallotSelection{
				{PositionName: "President", CandidateID: choices[i]},
				{PositionName: "Senator", CandidateID: fx.senator1},
			},
		}, fx.votingTime)
		if err != nil {
			t.Fatalf("Ballot %d failed: %v", i, err)
		}
	}

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

	expected := voters * 2
	if tallySum != expected || ledgerRows != expected || votesCount != expected {
		t.Errorf("Totals diverged: tallies=%d ledger=%d analytics=%d, want %d",
			tallySum, ledgerRows, votesCount, expected)
	}

	var p1 int
	if err := db.QueryRow(`SELECT votes FROM candidate WHERE id = $1`, fx.president1).Scan(&p1); err != nil {
		t.Fatalf("Failed to query votes: %v", err)
	}
	if p1 != 4 {
		t.Errorf("Expected president1 at 4 votes, got %d", p1)
	}
}
