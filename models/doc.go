// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the shared types for the Halalan API.

# Type Categories

Request types (JSON bodies from clients):

  - CreateElectionRequest, SubmitCandidacyRequest, DecisionRequest
  - SubmitPartyListRequest, CastBallotRequest, RateCandidatesRequest
  - AuthenticateVoterRequest, IssueCodeRequest

Response types (JSON bodies to clients):

  - CreateElectionResponse, SubmitCandidacyResponse, CastBallotResponse
  - ResolveResponse, ErrorResponse

Domain types (database entities):

  - Election, Position, Student, Eligible
  - Candidacy, PartyList, Candidate
  - Winner, Analytics

# Status Constants

Candidacies and party lists move through:

	pending → approved | rejected

A rejected candidacy may be re-filed; an approved one spawns exactly
one Candidate row carrying the tallies.

# Error Taxonomy

models.Error carries a stable code plus a human-readable reason.
Handlers map codes to HTTP statuses; the core returns them as plain
error values. Same-code errors compare equal under errors.Is:

	if errors.Is(err, models.ErrDuplicateSubmission) { ... }
*/
package models
