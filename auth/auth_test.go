// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int
	}{
		{"16 bytes", 16, 32},
		{"8 bytes", 8, 16},
		{"24 bytes", 24, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID failed: %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("Expected length %d, got %d", tt.wantLen, len(id))
			}
		})
	}

	// IDs should be unique
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateID(16)
		if err != nil {
			t.Fatalf("GenerateID failed: %v", err)
		}
		if seen[id] {
			t.Fatalf("Duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestGenerateVotingCredential(t *testing.T) {
	for i := 0; i < 50; i++ {
		cred, err := GenerateVotingCredential()
		if err != nil {
			t.Fatalf("GenerateVotingCredential failed: %v", err)
		}
		if len(cred) != CredentialLength {
			t.Errorf("Expected length %d, got %d (%q)", CredentialLength, len(cred), cred)
		}
		for _, c := range cred {
			if !strings.ContainsRune(alphanumeric, c) {
				t.Errorf("Credential %q contains non-alphanumeric character %q", cred, c)
			}
		}
	}
}

func TestCredentialHashRoundTrip(t *testing.T) {
	cred, err := GenerateVotingCredential()
	if err != nil {
		t.Fatalf("GenerateVotingCredential failed: %v", err)
	}

	hash, err := HashCredential(cred)
	if err != nil {
		t.Fatalf("HashCredential failed: %v", err)
	}
	if hash == cred {
		t.Error("Hash should not equal plaintext")
	}

	if !VerifyCredential(hash, cred) {
		t.Error("Expected credential to verify against its own hash")
	}
	if VerifyCredential(hash, "wrong12") {
		t.Error("Expected wrong credential to fail verification")
	}
	if VerifyCredential(hash, "") {
		t.Error("Expected empty credential to fail verification")
	}
}

func TestVerifyCode(t *testing.T) {
	code, err := GenerateVerificationCode()
	if err != nil {
		t.Fatalf("GenerateVerificationCode failed: %v", err)
	}
	if len(code) != CodeLength {
		t.Errorf("Expected code length %d, got %d", CodeLength, len(code))
	}

	digest := HashCode(code)
	if digest == code {
		t.Error("Digest should not equal plaintext")
	}
	if len(digest) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(digest))
	}

	if !VerifyCode(digest, code) {
		t.Error("Expected code to verify against its own digest")
	}
	if VerifyCode(digest, "AAAAAA") {
		t.Error("Expected wrong code to fail verification")
	}
}
