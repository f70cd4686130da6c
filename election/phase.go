// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"time"

	"github.com/danielhkuo/halalan/models"
)

// Phase labels, in chronological order.
const (
	PhasePreElection  = "Pre-Election"
	PhaseFiling       = "Filing Period"
	PhaseCampaign     = "Campaign Period"
	PhaseVoting       = "Voting Period"
	PhaseAppeal       = "Appeal Period"
	PhasePostElection = "Post-Election"
)

var phaseOrder = []string{
	PhasePreElection,
	PhaseFiling,
	PhaseCampaign,
	PhaseVoting,
	PhaseAppeal,
	PhasePostElection,
}

// CurrentPhase derives the election's phase from its configured windows.
// Boundaries are evaluated in chronological order and the label of the
// last boundary already crossed is returned; a boundary counts as
// crossed at its exact instant. Pure function, no side effects.
func CurrentPhase(e *models.Election, now time.Time) string {
	phase := PhasePreElection

	boundaries := []struct {
		at    time.Time
		label string
	}{
		{e.FilingStart, PhaseFiling},
		{e.CampaignStart, PhaseCampaign},
		{e.VotingStart, PhaseVoting},
		{e.AppealStart, PhaseAppeal},
		{e.AppealEnd, PhasePostElection},
	}

	for _, b := range boundaries {
		if !now.Before(b.at) {
			phase = b.label
		}
	}

	return phase
}

// PhaseIndex returns the position of a phase label in chronological
// order, or -1 for an unknown label.
func PhaseIndex(phase string) int {
	for i, p := range phaseOrder {
		if p == phase {
			return i
		}
	}
	return -1
}

// filingOpen reports whether a filing submission is still accepted.
func filingOpen(e *models.Election, now time.Time) bool {
	return !now.After(e.FilingEnd)
}

// votingOpen reports whether a ballot is accepted right now.
func votingOpen(e *models.Election, now time.Time) bool {
	return !now.Before(e.VotingStart) && !now.After(e.VotingEnd)
}
