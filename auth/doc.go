// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth generates and verifies the secrets used by the election core.

# Voting Credentials

Each eligible voter receives a 7-character alphanumeric credential at
election creation time. Only the bcrypt hash is stored:

	cred, _ := auth.GenerateVotingCredential()
	hash, _ := auth.HashCredential(cred)
	ok := auth.VerifyCredential(hash, presented)

bcrypt comparison is constant-time, so credential checks do not leak
timing information.

# Verification Codes

Candidacy filing requires a short-lived 6-character code issued to the
student beforehand. Codes are stored as SHA-256 digests and compared
with hmac.Equal:

	code, _ := auth.GenerateVerificationCode()
	digest := auth.HashCode(code)
	ok := auth.VerifyCode(digest, presented)

# Identifiers

GenerateID produces random hex surrogate IDs for database rows:

	id, _ := auth.GenerateID(16) // 32 hex chars
*/
package auth
