// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/halalan/clock"
	"github.com/danielhkuo/halalan/election"
	"github.com/danielhkuo/halalan/models"
	"github.com/danielhkuo/halalan/receipt"
	"github.com/danielhkuo/halalan/schedule"
	"github.com/danielhkuo/halalan/testutil"
)

// TestElectionLifecycle drives a full election through the HTTP surface:
// creation, code issuance, candidacy filing and approval, voting, and
// scheduler-driven resolution.
func TestElectionLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig(t)

	base := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	clk := clock.NewManual(base)

	resolve := func(electionID string, now time.Time) error {
		_, err := election.ResolveWinners(db, nil, electionID, now)
		return err
	}
	sched, err := schedule.Open(filepath.Join(t.TempDir(), "jobs.db"), resolve, clk)
	if err != nil {
		t.Fatalf("Failed to open scheduler: %v", err)
	}
	defer sched.Stop()

	receipts := &receipt.Service{
		Renderer: receipt.TextRenderer{},
		Store:    receipt.DiskStore{Dir: t.TempDir()},
	}

	electionHandler := NewElectionHandler(db, cfg, clk, nil, sched)
	candidacyHandler := NewCandidacyHandler(db, clk, nil)
	votingHandler := NewVotingHandler(db, clk, receipts)
	resultsHandler := NewResultsHandler(db, clk, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /elections", electionHandler.CreateElection)
	mux.HandleFunc("GET /elections/{id}", electionHandler.GetElection)
	mux.HandleFunc("POST /verification-codes", candidacyHandler.IssueCode)
	mux.HandleFunc("POST /elections/{id}/candidacies", candidacyHandler.SubmitCandidacy)
	mux.HandleFunc("POST /candidacies/{id}/decision", candidacyHandler.DecideCandidacy)
	mux.HandleFunc("POST /elections/{id}/authenticate", votingHandler.Authenticate)
	mux.HandleFunc("POST /elections/{id}/ballots", votingHandler.CastBallot)
	mux.HandleFunc("GET /elections/{id}/winners", resultsHandler.GetWinners)
	mux.HandleFunc("GET /elections/{id}/analytics", resultsHandler.GetAnalytics)

	orgID := testutil.SeedOrganization(t, db, models.RequirementAny)
	testutil.SeedStudent(t, db, "2021-00001", "BSCS", models.EnrollmentContinuing)
	testutil.SeedStudent(t, db, "2021-00002", "BSCS", models.EnrollmentContinuing)
	testutil.SeedStudent(t, db, "2021-00003", "BSIT", models.EnrollmentContinuing)

	// Create the election; the registry fills from the student roster
	req := testutil.MakeRequest("POST", "/elections", validCreateRequest(orgID, base), nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.CreateElectionResponse
	testutil.AssertJSON(t, w, &created)
	electionID := created.ElectionID
	if created.EligibleCount != 3 {
		t.Fatalf("Expected 3 eligible voters, got %d", created.EligibleCount)
	}

	// The generated credentials are hashed; seed known ones for voting
	_, err = db.Exec(`DELETE FROM eligible WHERE election_id = $1`, electionID)
	if err != nil {
		t.Fatalf("Failed to reset registry: %v", err)
	}
	testutil.SeedEligible(t, db, electionID, "2021-00001", "CRED001")
	testutil.SeedEligible(t, db, electionID, "2021-00002", "CRED002")
	testutil.SeedEligible(t, db, electionID, "2021-00003", "CRED003")

	// Filing period opens
	clk.Set(base.Add(90 * time.Minute))

	req = testutil.MakeRequest("POST", "/verification-codes",
		models.IssueCodeRequest{StudentNumber: "2021-00001"}, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var issued models.IssueCodeResponse
	testutil.AssertJSON(t, w, &issued)
	if issued.Code == "" {
		t.Fatal("Expected a plaintext code in the issue response")
	}

	req = testutil.MakeRequest("POST", "/elections/"+electionID+"/candidacies",
		models.SubmitCandidacyRequest{
			StudentNumber:    "2021-00001",
			PositionName:     "President",
			Platform:         "Better campus services",
			VerificationCode: issued.Code,
		}, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var filed models.SubmitCandidacyResponse
	testutil.AssertJSON(t, w, &filed)

	req = testutil.MakeRequest("POST", "/candidacies/"+filed.CandidacyID+"/decision",
		models.DecisionRequest{Decision: models.DecisionApprove}, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var decided models.DecideCandidacyResponse
	testutil.AssertJSON(t, w, &decided)
	candidateID := decided.CandidateID

	// Voting period: authenticate, then everyone votes for the sole
	// candidate so they clear the majority threshold
	clk.Set(base.Add(210 * time.Minute))

	req = testutil.MakeRequest("POST", "/elections/"+electionID+"/authenticate",
		models.AuthenticateVoterRequest{StudentNumber: "2021-00002", Credential: "CRED002"}, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	for _, voter := range []struct{ number, credential string }{
		{"2021-00001", "CRED001"},
		{"2021-00002", "CRED002"},
	} {
		req = testutil.MakeRequest("POST", "/elections/"+electionID+"/ballots",
			models.CastBallotRequest{
				StudentNumber: voter.number,
				Credential:    voter.credential,
				Selections: []models.BallotSelection{
					{PositionName: "President", CandidateID: candidateID},
				},
				AbstainedPositions: []string{"Senator"},
			}, nil)
		w = httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		testutil.AssertStatus(t, w, http.StatusCreated)

		var cast models.CastBallotResponse
		testutil.AssertJSON(t, w, &cast)
		if cast.VotesRecorded != 1 {
			t.Errorf("Expected 1 vote recorded for %s, got %d", voter.number, cast.VotesRecorded)
		}
		if cast.ReceiptURL == "" {
			t.Errorf("Expected a receipt URL for %s", voter.number)
		}
	}

	// Voting closes; the scheduler fires the resolution job
	clk.Set(base.Add(4 * time.Hour))
	sched.RunDue()

	if _, found, _ := sched.Pending(electionID); found {
		t.Error("Resolution job should be retired after firing")
	}

	req = testutil.MakeRequest("GET", "/elections/"+electionID+"/winners", nil, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var winners []models.Winner
	testutil.AssertJSON(t, w, &winners)
	if len(winners) != 1 {
		t.Fatalf("Expected 1 winner, got %d", len(winners))
	}
	if winners[0].StudentNumber != "2021-00001" || winners[0].Votes != 2 {
		t.Errorf("Unexpected winner row: %+v", winners[0])
	}
	if winners[0].IsTied {
		t.Error("Sole winner should not be tied")
	}

	req = testutil.MakeRequest("GET", "/elections/"+electionID+"/analytics", nil, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var analytics models.Analytics
	testutil.AssertJSON(t, w, &analytics)
	if analytics.VotesCount != 2 {
		t.Errorf("Expected votes_count 2, got %d", analytics.VotesCount)
	}

	// Even at the inclusive voting-end instant, a ballot after
	// resolution is rejected
	req = testutil.MakeRequest("POST", "/elections/"+electionID+"/ballots",
		models.CastBallotRequest{
			StudentNumber: "2021-00003",
			Credential:    "CRED003",
			Selections: []models.BallotSelection{
				{PositionName: "President", CandidateID: candidateID},
			},
		}, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusConflict)
}
