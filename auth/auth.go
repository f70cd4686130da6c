// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// CredentialLength is the length of a generated voting credential.
const CredentialLength = 7

// CodeLength is the length of a generated filing verification code.
const CodeLength = 6

const alphanumeric = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateVotingCredential creates a single-use alphanumeric voting
// credential. The plaintext is mailed to the voter; only the bcrypt
// hash is stored.
func GenerateVotingCredential() (string, error) {
	return randomAlphanumeric(CredentialLength)
}

// GenerateVerificationCode creates a short-lived code for candidacy filing.
func GenerateVerificationCode() (string, error) {
	return randomAlphanumeric(CodeLength)
}

func randomAlphanumeric(length int) (string, error) {
	max := big.NewInt(int64(len(alphanumeric)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random string: %w", err)
		}
		b[i] = alphanumeric[n.Int64()]
	}
	return string(b), nil
}

// HashCredential hashes a voting credential for storage.
func HashCredential(credential string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash credential: %w", err)
	}
	return string(hash), nil
}

// VerifyCredential reports whether the presented credential matches the
// stored hash. bcrypt comparison is constant-time.
func VerifyCredential(storedHash, presented string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(presented)) == nil
}

// HashCode hashes a verification code for storage. Codes are short-lived
// and high-volume, so a plain SHA-256 digest is used instead of bcrypt.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// VerifyCode compares a presented code against a stored digest using a
// timing-safe comparison.
func VerifyCode(storedDigest, presented string) bool {
	return hmac.Equal([]byte(storedDigest), []byte(HashCode(presented)))
}
