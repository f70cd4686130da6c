// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Students (registry mirror; owned upstream, read-only here)
CREATE TABLE IF NOT EXISTS student (
    student_number TEXT PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    course_code TEXT NOT NULL,
    enrollment_status INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_student_course ON student(course_code);

-- Student organizations
CREATE TABLE IF NOT EXISTS organization (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    member_requirement TEXT NOT NULL DEFAULT 'Any',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Elections: immutable after creation except cascading delete
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    organization_id TEXT NOT NULL REFERENCES organization(id),
    status TEXT NOT NULL DEFAULT 'ongoing' CHECK (status IN ('ongoing', 'finished')),
    school_year TEXT,
    semester TEXT,
    election_start TIMESTAMP NOT NULL,
    election_end TIMESTAMP NOT NULL,
    filing_start TIMESTAMP NOT NULL,
    filing_end TIMESTAMP NOT NULL,
    campaign_start TIMESTAMP NOT NULL,
    campaign_end TIMESTAMP NOT NULL,
    voting_start TIMESTAMP NOT NULL,
    voting_end TIMESTAMP NOT NULL,
    appeal_start TIMESTAMP NOT NULL,
    appeal_end TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Positions: created with the election, immutable afterward
CREATE TABLE IF NOT EXISTS position (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    quantity INTEGER NOT NULL CHECK (quantity >= 1),
    UNIQUE (election_id, name)
);

CREATE INDEX IF NOT EXISTS idx_position_election_id ON position(election_id);

-- Eligibility registry: one row per (election, student)
CREATE TABLE IF NOT EXISTS eligible (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    student_number TEXT NOT NULL REFERENCES student(student_number),
    credential_hash TEXT NOT NULL,
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (election_id, student_number)
);

CREATE INDEX IF NOT EXISTS idx_eligible_election_id ON eligible(election_id);

-- Filing verification codes, stored as SHA-256 digests, single-use
CREATE TABLE IF NOT EXISTS verification_code (
    id TEXT PRIMARY KEY,
    student_number TEXT NOT NULL REFERENCES student(student_number),
    code_digest TEXT NOT NULL,
    used BOOLEAN NOT NULL DEFAULT FALSE,
    expires_at TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_verification_code_student ON verification_code(student_number);

-- Disciplinary incidents; an open report blocks candidacy filing
CREATE TABLE IF NOT EXISTS incident_report (
    id TEXT PRIMARY KEY,
    student_number TEXT NOT NULL REFERENCES student(student_number),
    details TEXT,
    status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'resolved')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_incident_report_student ON incident_report(student_number);

-- Party lists
CREATE TABLE IF NOT EXISTS party_list (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    description TEXT,
    platforms TEXT,
    email_address TEXT,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (election_id, name)
);

-- Certificates of candidacy
CREATE TABLE IF NOT EXISTS candidacy (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    student_number TEXT NOT NULL REFERENCES student(student_number),
    position_name TEXT NOT NULL,
    party_list_id TEXT REFERENCES party_list(id),
    motto TEXT,
    platform TEXT,
    display_photo TEXT,
    grades_cert TEXT,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    reject_reason TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_candidacy_election_id ON candidacy(election_id);
CREATE INDEX IF NOT EXISTS idx_candidacy_student ON candidacy(election_id, student_number);

-- Candidates: tally-bearing rows derived from approved candidacies
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    student_number TEXT NOT NULL REFERENCES student(student_number),
    position_name TEXT NOT NULL,
    party_list_id TEXT REFERENCES party_list(id),
    display_photo TEXT,
    votes INTEGER NOT NULL DEFAULT 0,
    times_abstained INTEGER NOT NULL DEFAULT 0,
    rating REAL NOT NULL DEFAULT 0,
    times_rated INTEGER NOT NULL DEFAULT 0,
    one_star INTEGER NOT NULL DEFAULT 0,
    two_star INTEGER NOT NULL DEFAULT 0,
    three_star INTEGER NOT NULL DEFAULT 0,
    four_star INTEGER NOT NULL DEFAULT 0,
    five_star INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (election_id, student_number)
);

CREATE INDEX IF NOT EXISTS idx_candidate_election_id ON candidate(election_id);
CREATE INDEX IF NOT EXISTS idx_candidate_position ON candidate(election_id, position_name);

-- Vote ledger: immutable audit rows, never updated or deleted
CREATE TABLE IF NOT EXISTS vote_ledger (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    voter_student_number TEXT NOT NULL,
    candidate_id TEXT NOT NULL REFERENCES candidate(id),
    course_code TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (voter_student_number, candidate_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_ledger_election_id ON vote_ledger(election_id);
CREATE INDEX IF NOT EXISTS idx_vote_ledger_voter ON vote_ledger(election_id, voter_student_number);

-- Running totals, incremented alongside each ballot
CREATE TABLE IF NOT EXISTS election_analytics (
    election_id TEXT PRIMARY KEY REFERENCES election(id) ON DELETE CASCADE,
    votes_count INTEGER NOT NULL DEFAULT 0,
    abstain_count INTEGER NOT NULL DEFAULT 0
);

-- Resolution results, written exactly once per election
CREATE TABLE IF NOT EXISTS election_winner (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    position_name TEXT NOT NULL,
    student_number TEXT NOT NULL,
    votes INTEGER NOT NULL DEFAULT 0,
    is_tied BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (election_id, position_name, student_number)
);

CREATE INDEX IF NOT EXISTS idx_election_winner_election_id ON election_winner(election_id);

-- One rating submission per (election, student)
CREATE TABLE IF NOT EXISTS rating_tracker (
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    student_number TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (election_id, student_number)
);

-- Voting receipts; receipt_url empty when rendering failed
CREATE TABLE IF NOT EXISTS voting_receipt (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    student_number TEXT NOT NULL,
    receipt_url TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Announcements (results publication target)
CREATE TABLE IF NOT EXISTS announcement (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    title TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
