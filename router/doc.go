// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Halalan API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, clk, queue, sched, receipts)

# Endpoints

Health:

	GET /health

Election lifecycle (admin):

	POST   /elections      - Create election, seed registry, schedule resolution
	GET    /elections/{id} - Election detail with current phase
	DELETE /elections/{id} - Delete election and its pending job

Candidacy admission:

	POST /verification-codes         - Issue a single-use filing code
	POST /elections/{id}/candidacies - File a candidacy
	POST /candidacies/{id}/decision  - Approve or reject a candidacy

Party lists:

	POST /elections/{id}/party-lists - Register a party list
	POST /party-lists/{id}/decision  - Approve or reject a party list

Voting:

	POST /elections/{id}/authenticate - Verify a voter credential
	POST /elections/{id}/ballots      - Cast a ballot (one per voter)
	POST /elections/{id}/ratings      - Rate candidates with stars

Results:

	GET  /elections/{id}/winners   - Resolved winner rows
	GET  /elections/{id}/analytics - Turnout counters
	POST /elections/{id}/resolve   - Manual resolution trigger

# Handler Initialization

The router creates handler instances with dependency injection:

	electionHandler := handlers.NewElectionHandler(db, cfg, clk, queue, sched)
	candidacyHandler := handlers.NewCandidacyHandler(db, clk, queue)
	partyListHandler := handlers.NewPartyListHandler(db, clk, queue)
	votingHandler := handlers.NewVotingHandler(db, clk, receipts)
	resultsHandler := handlers.NewResultsHandler(db, clk, queue)

All handlers receive the database connection; the clock, notification
queue, scheduler, and receipt service go only where they are used.
*/
package router
