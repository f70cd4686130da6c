// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/halalan/auth"
	"github.com/danielhkuo/halalan/cliparse"
	"github.com/danielhkuo/halalan/db"
)

var dbSeq atomic.Int64

// SetupTestDB creates a fresh in-memory SQLite database with the full
// schema. Each call gets its own database; a single connection keeps
// the memory store alive for the test's lifetime.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", dbSeq.Add(1))
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig(t *testing.T) cliparse.Config {
	t.Helper()
	return cliparse.Config{
		Port:         3520,
		DatabaseURL:  ":memory:",
		DatabaseType: "sqlite",
		TimeZone:     "Asia/Manila",
		JobStore:     t.TempDir() + "/jobs.db",
		ReceiptDir:   t.TempDir(),
	}
}

// ElectionTimes lays out the ten election windows at hour offsets from
// base: filing 1h-2h, campaign 2h-3h, voting 3h-4h, appeal 4h-5h.
func ElectionTimes(base time.Time) []time.Time {
	return []time.Time{
		base,                    // election_start
		base.Add(5 * time.Hour), // election_end
		base.Add(1 * time.Hour), // filing_start
		base.Add(2 * time.Hour), // filing_end
		base.Add(2 * time.Hour), // campaign_start
		base.Add(3 * time.Hour), // campaign_end
		base.Add(3 * time.Hour), // voting_start
		base.Add(4 * time.Hour), // voting_end
		base.Add(4 * time.Hour), // appeal_start
		base.Add(5 * time.Hour), // appeal_end
	}
}

// SeedStudent inserts a student row
func SeedStudent(t *testing.T, conn *sql.DB, studentNumber, course string, enrollmentStatus int) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO student (student_number, first_name, last_name, email, course_code, enrollment_status, created_at)
		VALUES ($1, 'Test', 'Student', $2, $3, $4, $5)
	`, studentNumber, studentNumber+"@test.edu", course, enrollmentStatus, time.Now())
	if err != nil {
		t.Fatalf("Failed to seed student: %v", err)
	}
}

// SeedOrganization inserts an organization and returns its ID
func SeedOrganization(t *testing.T, conn *sql.DB, requirement string) string {
	t.Helper()

	orgID, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO organization (id, name, member_requirement, created_at)
		VALUES ($1, 'Test Organization', $2, $3)
	`, orgID, requirement, time.Now())
	if err != nil {
		t.Fatalf("Failed to seed organization: %v", err)
	}

	return orgID
}

// SeedElection inserts an election with the given windows (in
// ElectionTimes order) plus its analytics row, and returns its ID
func SeedElection(t *testing.T, conn *sql.DB, orgID string, times []time.Time) string {
	t.Helper()

	electionID, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO election
			(id, name, organization_id, status, school_year, semester,
			 election_start, election_end, filing_start, filing_end,
			 campaign_start, campaign_end, voting_start, voting_end,
			 appeal_start, appeal_end, created_at)
		VALUES ($1, 'Test Election', $2, 'ongoing', '2025-2026', '1st',
			$3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, electionID, orgID,
		times[0], times[1], times[2], times[3], times[4],
		times[5], times[6], times[7], times[8], times[9], time.Now())
	if err != nil {
		t.Fatalf("Failed to seed election: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO election_analytics (election_id, votes_count, abstain_count)
		VALUES ($1, 0, 0)
	`, electionID)
	if err != nil {
		t.Fatalf("Failed to seed analytics row: %v", err)
	}

	return electionID
}

// SeedPosition inserts a position and returns its ID
func SeedPosition(t *testing.T, conn *sql.DB, electionID, name string, quantity int) string {
	t.Helper()

	positionID, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO position (id, election_id, name, quantity)
		VALUES ($1, $2, $3, $4)
	`, positionID, electionID, name, quantity)
	if err != nil {
		t.Fatalf("Failed to seed position: %v", err)
	}

	return positionID
}

// SeedEligible registers a voter with a known plaintext credential
func SeedEligible(t *testing.T, conn *sql.DB, electionID, studentNumber, credential string) {
	t.Helper()

	hash, err := auth.HashCredential(credential)
	if err != nil {
		t.Fatalf("Failed to hash credential: %v", err)
	}

	eligibleID, _ := auth.GenerateID(16)
	_, err = conn.Exec(`
		INSERT INTO eligible (id, election_id, student_number, credential_hash, has_voted, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
	`, eligibleID, electionID, studentNumber, hash, time.Now())
	if err != nil {
		t.Fatalf("Failed to seed eligible: %v", err)
	}
}

// SeedCandidate inserts a zero-tally candidate and returns its ID
func SeedCandidate(t *testing.T, conn *sql.DB, electionID, studentNumber, positionName string) string {
	t.Helper()

	candidateID, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO candidate (id, election_id, student_number, position_name, votes, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)
	`, candidateID, electionID, studentNumber, positionName, time.Now())
	if err != nil {
		t.Fatalf("Failed to seed candidate: %v", err)
	}

	return candidateID
}

// SeedVerificationCode stores the digest of a known plaintext code
func SeedVerificationCode(t *testing.T, conn *sql.DB, studentNumber, code string, expiresAt time.Time) string {
	t.Helper()

	codeID, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO verification_code (id, student_number, code_digest, used, expires_at, created_at)
		VALUES ($1, $2, $3, FALSE, $4, $5)
	`, codeID, studentNumber, auth.HashCode(code), expiresAt, time.Now())
	if err != nil {
		t.Fatalf("Failed to seed verification code: %v", err)
	}

	return codeID
}

// SetVotes overwrites a candidate's tally directly
func SetVotes(t *testing.T, conn *sql.DB, candidateID string, votes int) {
	t.Helper()

	_, err := conn.Exec(`UPDATE candidate SET votes = $1 WHERE id = $2`, votes, candidateID)
	if err != nil {
		t.Fatalf("Failed to set votes: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
