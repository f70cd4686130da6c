// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Halalan API.

# Handler Types

Each handler is a struct with its dependencies injected via constructor:

  - ElectionHandler: Election lifecycle (create, inspect, delete)
  - CandidacyHandler: Verification codes and candidacy admission
  - PartyListHandler: Party-list registration and screening
  - VotingHandler: Voter authentication, ballots, and candidate ratings
  - ResultsHandler: Winners, analytics, and manual resolution

Constructors accept the database connection plus whichever of the
clock, notification queue, scheduler, and receipt service they use:

	electionHandler := handlers.NewElectionHandler(db, cfg, clk, queue, sched)

# Election Lifecycle

Creating an election seeds its positions and analytics row, populates
the eligibility registry from the organization's member requirement,
and schedules winner resolution at the voting cutoff:

	POST   /elections      → CreateElection
	GET    /elections/{id} → GetElection (includes the current phase)
	DELETE /elections/{id} → DeleteElection

# Admission Flow

Filing a candidacy requires a live verification code issued beforehand:

	POST /verification-codes           → IssueCode
	POST /elections/{id}/candidacies   → SubmitCandidacy
	POST /candidacies/{id}/decision    → DecideCandidacy
	POST /elections/{id}/party-lists   → SubmitPartyList
	POST /party-lists/{id}/decision    → DecidePartyList

Approving a candidacy promotes the filer to a zero-tally candidate.

# Voting Flow

Voters authenticate with the credential issued at registry population,
then cast exactly one ballot:

	POST /elections/{id}/authenticate → Authenticate
	POST /elections/{id}/ballots      → CastBallot
	POST /elections/{id}/ratings     → RateCandidates

# Results

	GET  /elections/{id}/winners   → GetWinners
	GET  /elections/{id}/analytics → GetAnalytics
	POST /elections/{id}/resolve   → Resolve (idempotent)

Domain failures are translated to HTTP statuses by
middleware.DomainError; handlers only map transport-level problems
(bad JSON, missing fields) themselves.
*/
package handlers
