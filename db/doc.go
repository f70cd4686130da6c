// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db creates the database schema for the Halalan API.

# Usage

	if err := db.CreateSchema(dbConn); err != nil {
		// handle
	}

CreateSchema is idempotent (IF NOT EXISTS throughout) and works on both
PostgreSQL (production) and SQLite (development and tests).

# Ownership

The election row owns everything underneath it: positions, eligibility
records, candidacies, candidates, the vote ledger, analytics and winner
rows all cascade on election deletion. Student and organization rows are
mirrored from upstream systems and never cascade.

# Identifier Policy

All core entities use random hex surrogate ids (auth.GenerateID).
Identifiers are stable for the lifetime of a row; nothing renumbers
primary keys.
*/
package db
