// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election implements the election lifecycle and vote-tallying
engine: phase derivation, the eligibility registry, candidacy and
party-list admission, ballot submission, winner resolution and the
candidate rating engine.

# Phase Calculator

CurrentPhase is a pure function over the election's configured windows:

	phase := election.CurrentPhase(e, clk.Now())

Phases advance monotonically: Pre-Election, Filing Period, Campaign
Period, Voting Period, Appeal Period, Post-Election. A boundary counts
as crossed at its exact instant, everywhere.

# Eligibility Registry

PopulateEligibles runs once at election creation and creates one record
per continuing student matching the organization requirement, each with
a bcrypt-hashed single-use credential. AuthenticateVoter verifies a
presented credential in constant time.

# Admission

SubmitCandidacy enforces the filing rules in a fixed order (window,
eligibility, disciplinary block, enrollment status, verification code,
duplicate, party capacity) and returns a typed models.Error for each
violation. DecideCandidacy promotes an approved filing into a
zero-tally candidate row; decisions are not repeatable.

# Ballot Engine

CastBallot applies one voter's entire ballot in a single transaction:
candidate vote increments, abstain increments, immutable ledger rows,
analytics counters and the has-voted flag. Increments are relative SQL
updates, so concurrent ballots never lose counts. Receipt rendering
happens after commit and can only degrade, never roll back a vote.

# Winner Resolution

ResolveWinners runs once per election, normally fired by the scheduler
at the voting-end instant. A sole candidate needs a majority of the
eligible voters; contested positions rank by votes with ties extended
through the cutoff. Existing winner rows make any re-trigger a no-op
(AlreadyResolved).
*/
package election
