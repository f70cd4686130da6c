// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/halalan/auth"
	"github.com/danielhkuo/halalan/clock"
	"github.com/danielhkuo/halalan/models"
	"github.com/danielhkuo/halalan/notify"
	"github.com/danielhkuo/halalan/testutil"
)

// recordingSender captures delivered messages for inspection.
type recordingSender struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (s *recordingSender) Send(_ context.Context, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

func TestIssueCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	clk := clock.NewManual(time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC))

	sender := &recordingSender{}
	queue := notify.NewQueue(sender, 1, 8)
	queue.Start()

	handler := NewCandidacyHandler(db, clk, queue)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /verification-codes", handler.IssueCode)

	testutil.SeedStudent(t, db, "2021-00001", "BSCS", models.EnrollmentContinuing)

	// Unknown student
	req := testutil.MakeRequest("POST", "/verification-codes",
		models.IssueCodeRequest{StudentNumber: "2099-99999"}, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)

	// Known student gets a code with the documented TTL
	req = testutil.MakeRequest("POST", "/verification-codes",
		models.IssueCodeRequest{StudentNumber: "2021-00001"}, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.IssueCodeResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Code) != auth.CodeLength {
		t.Errorf("Expected a %d-char code, got %q", auth.CodeLength, resp.Code)
	}
	if !resp.ExpiresAt.Equal(clk.Now().Add(15 * time.Minute)) {
		t.Errorf("Expected expiry 15m after issuance, got %v", resp.ExpiresAt)
	}

	// Only the digest is stored
	var digest string
	var used bool
	err := db.QueryRow(`
		SELECT code_digest, used FROM verification_code WHERE student_number = $1
	`, "2021-00001").Scan(&digest, &used)
	if err != nil {
		t.Fatalf("Failed to query stored code: %v", err)
	}
	if digest != auth.HashCode(resp.Code) {
		t.Error("Stored digest does not match the issued code")
	}
	if used {
		t.Error("Freshly issued code should be unused")
	}

	// The notification goes to the student's email address, carrying the code
	queue.Stop()
	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.messages) != 1 {
		t.Fatalf("Expected 1 delivered message, got %d", len(sender.messages))
	}
	msg := sender.messages[0]
	if msg.Recipient != "2021-00001@test.edu" {
		t.Errorf("Expected recipient 2021-00001@test.edu, got %q", msg.Recipient)
	}
	if msg.Template != notify.TemplateVerificationCode {
		t.Errorf("Expected template %q, got %q", notify.TemplateVerificationCode, msg.Template)
	}
	if msg.Payload["code"] != resp.Code {
		t.Error("Notification payload does not carry the issued code")
	}
}
