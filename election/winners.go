// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/halalan/auth"
	"github.com/danielhkuo/halalan/models"
	"github.com/danielhkuo/halalan/notify"
)

// ResolveWinners computes and persists the election results. It is
// triggered by the scheduler at the voting-end instant and may also be
// invoked manually; an election that already has winner rows returns
// AlreadyResolved without recomputation, which makes duplicate triggers
// harmless.
//
// Selection rules per position:
//
//   - Sole candidate: wins only with a majority of the eligible voters,
//     votes >= floor(eligible/2) + 1. Never marked tied.
//   - Contested: candidates ranked by votes descending; winners taken
//     greedily up to the position's quantity, extended through any tie
//     at the cutoff vote count. When the tie extension selects more
//     winners than the quantity, every winner row for that position is
//     marked tied. A position whose top vote count is zero gets no
//     winner.
//
// All winner rows and the results announcement commit in one
// transaction; a persistence error leaves no partial result set.
func ResolveWinners(db *sql.DB, q *notify.Queue, electionID string, now time.Time) ([]models.Winner, error) {
	e, err := GetElection(db, electionID)
	if err != nil {
		return nil, err
	}

	// The status flips to finished in the same transaction as the winner
	// rows, so it also guards resolutions that produced no winners.
	if e.Status == models.ElectionFinished {
		return nil, models.AlreadyResolved("election " + electionID + " is already resolved")
	}

	positions, err := GetPositions(db, electionID)
	if err != nil {
		return nil, err
	}

	eligible, err := eligibleVoterCount(db, electionID)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT id, student_number, position_name, votes
		FROM candidate WHERE election_id = $1
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	byPosition := make(map[string][]models.Candidate)
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.StudentNumber, &c.PositionName, &c.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		byPosition[c.PositionName] = append(byPosition[c.PositionName], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidates: %w", err)
	}

	var winners []models.Winner
	for _, pos := range positions {
		selected, tied := selectWinners(byPosition[pos.Name], pos.Quantity, eligible)
		for _, c := range selected {
			winners = append(winners, models.Winner{
				ElectionID:    electionID,
				PositionName:  pos.Name,
				StudentNumber: c.StudentNumber,
				Votes:         c.Votes,
				IsTied:        tied,
				CreatedAt:     now,
			})
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range winners {
		id, err := auth.GenerateID(16)
		if err != nil {
			return nil, fmt.Errorf("failed to generate winner ID: %w", err)
		}
		winners[i].ID = id

		_, err = tx.Exec(`
			INSERT INTO election_winner
				(id, election_id, position_name, student_number, votes, is_tied, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, id, electionID, winners[i].PositionName, winners[i].StudentNumber,
			winners[i].Votes, winners[i].IsTied, now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert winner: %w", err)
		}
	}

	_, err = tx.Exec(`UPDATE election SET status = $1 WHERE id = $2`,
		models.ElectionFinished, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to finish election: %w", err)
	}

	announcementID, err := auth.GenerateID(16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate announcement ID: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO announcement (id, kind, title, body, created_at)
		VALUES ($1, 'results', $2, $3, $4)
	`, announcementID, e.Name+": Official Results", resultsBody(e.Name, winners), now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert results announcement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit resolution: %w", err)
	}

	slog.Info("election resolved",
		"election_id", electionID, "winners", len(winners), "eligible_voters", eligible)

	for _, w := range winners {
		notifyStudent(db, q, w.StudentNumber, notify.TemplateElectionResults, map[string]string{
			"election": e.Name,
			"position": w.PositionName,
			"votes":    humanize.Comma(int64(w.Votes)),
		})
	}

	return winners, nil
}

// selectWinners applies the per-position selection rules and reports
// whether the tie extension overshot the required quantity.
func selectWinners(cands []models.Candidate, quantity, eligible int) ([]models.Candidate, bool) {
	if len(cands) == 0 {
		return nil, false
	}

	if len(cands) == 1 {
		threshold := eligible/2 + 1
		if cands[0].Votes >= threshold {
			return cands, false
		}
		return nil, false
	}

	sorted := make([]models.Candidate, len(cands))
	copy(sorted, cands)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Votes != sorted[j].Votes {
			return sorted[i].Votes > sorted[j].Votes
		}
		return sorted[i].StudentNumber < sorted[j].StudentNumber
	})

	if sorted[0].Votes == 0 {
		return nil, false
	}

	if quantity > len(sorted) {
		quantity = len(sorted)
	}

	cutoff := sorted[quantity-1].Votes
	selected := sorted[:quantity]
	for _, c := range sorted[quantity:] {
		if c.Votes != cutoff {
			break
		}
		selected = append(selected, c)
	}

	return selected, len(selected) > quantity
}

// resultsBody formats the results announcement published alongside the
// winner rows.
func resultsBody(electionName string, winners []models.Winner) string {
	if len(winners) == 0 {
		return "No position reached a winning result in " + electionName + "."
	}

	var b strings.Builder
	b.WriteString("Official results for " + electionName + ":\n")
	for _, w := range winners {
		b.WriteString("\n" + w.PositionName + ": " + w.StudentNumber +
			" with " + humanize.Comma(int64(w.Votes)) + " votes")
		if w.IsTied {
			b.WriteString(" (tied)")
		}
	}
	return b.String()
}
