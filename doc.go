// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Halalan API server.

Halalan runs student-government elections end to end: phase-gated
filing and campaigning, credentialed one-ballot voting with abstention
tracking, and scheduled winner resolution with tie detection.

# Starting the Server

The server reads environment variables (optionally from .env) or CLI
flags:

	DATABASE_URL=elections.db go run .

Or with flags:

	go run . -p 3520 -d "postgres://..." -t postgres

# Configuration

Settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - PORT (-p): Server port (default: 3520)
  - ELECTION_TZ (-tz): Canonical timezone (default: Asia/Manila)
  - JOB_STORE (-jobs): bbolt file for durable resolution jobs
  - RECEIPT_DIR (-receipts): Directory for ballot receipt artifacts
  - SMTP_HOST/PORT/USERNAME/PASSWORD/FROM: Outbound mail; when unset,
    notifications are logged instead of sent

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (elections, candidacies, voting, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, domain-error mapping
  - election: Phase calculator, eligibility registry, admission,
    ballot engine, winner resolution, ratings
  - schedule: Durable voting-cutoff resolution jobs (bbolt)
  - notify: Bounded notification queue with SMTP delivery
  - receipt: Ballot receipt rendering and storage
  - models: Request/response and domain types, typed errors
  - auth: Credential and verification-code generation and hashing
  - clock: Injectable timezone-aware clock
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
