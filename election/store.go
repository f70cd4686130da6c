// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"database/sql"
	"fmt"

	"github.com/danielhkuo/halalan/models"
)

// GetElection loads one election row.
func GetElection(db *sql.DB, electionID string) (*models.Election, error) {
	var e models.Election
	err := db.QueryRow(`
		SELECT id, name, organization_id, status, school_year, semester,
		       election_start, election_end, filing_start, filing_end,
		       campaign_start, campaign_end, voting_start, voting_end,
		       appeal_start, appeal_end, created_at
		FROM election WHERE id = $1
	`, electionID).Scan(
		&e.ID, &e.Name, &e.OrganizationID, &e.Status, &e.SchoolYear, &e.Semester,
		&e.ElectionStart, &e.ElectionEnd, &e.FilingStart, &e.FilingEnd,
		&e.CampaignStart, &e.CampaignEnd, &e.VotingStart, &e.VotingEnd,
		&e.AppealStart, &e.AppealEnd, &e.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.NotFound("election " + electionID + " does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query election: %w", err)
	}
	return &e, nil
}

// GetPositions loads the election's positions.
func GetPositions(db *sql.DB, electionID string) ([]models.Position, error) {
	rows, err := db.Query(`
		SELECT id, election_id, name, quantity FROM position WHERE election_id = $1
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []models.Position
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(&p.ID, &p.ElectionID, &p.Name, &p.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// GetWinners loads the resolution results for an election.
func GetWinners(db *sql.DB, electionID string) ([]models.Winner, error) {
	rows, err := db.Query(`
		SELECT id, election_id, position_name, student_number, votes, is_tied, created_at
		FROM election_winner WHERE election_id = $1
		ORDER BY position_name, votes DESC, student_number
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query winners: %w", err)
	}
	defer rows.Close()

	var winners []models.Winner
	for rows.Next() {
		var w models.Winner
		if err := rows.Scan(&w.ID, &w.ElectionID, &w.PositionName, &w.StudentNumber,
			&w.Votes, &w.IsTied, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan winner: %w", err)
		}
		winners = append(winners, w)
	}
	return winners, rows.Err()
}

// GetAnalytics loads the running totals for an election.
func GetAnalytics(db *sql.DB, electionID string) (*models.Analytics, error) {
	var a models.Analytics
	err := db.QueryRow(`
		SELECT election_id, votes_count, abstain_count
		FROM election_analytics WHERE election_id = $1
	`, electionID).Scan(&a.ElectionID, &a.VotesCount, &a.AbstainCount)
	if err == sql.ErrNoRows {
		return nil, models.NotFound("no analytics for election " + electionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics: %w", err)
	}
	return &a, nil
}

func getStudent(db *sql.DB, studentNumber string) (*models.Student, error) {
	var s models.Student
	err := db.QueryRow(`
		SELECT student_number, first_name, last_name, email, course_code, enrollment_status
		FROM student WHERE student_number = $1
	`, studentNumber).Scan(&s.StudentNumber, &s.FirstName, &s.LastName, &s.Email,
		&s.CourseCode, &s.EnrollmentStatus)
	if err == sql.ErrNoRows {
		return nil, models.NotFound("student " + studentNumber + " does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query student: %w", err)
	}
	return &s, nil
}

func positionQuantity(db *sql.DB, electionID, positionName string) (int, error) {
	var quantity int
	err := db.QueryRow(`
		SELECT quantity FROM position WHERE election_id = $1 AND name = $2
	`, electionID, positionName).Scan(&quantity)
	if err == sql.ErrNoRows {
		return 0, models.NotFound("position " + positionName + " does not exist in this election")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query position: %w", err)
	}
	return quantity, nil
}

func eligibleVoterCount(db *sql.DB, electionID string) (int, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM eligible WHERE election_id = $1
	`, electionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count eligible voters: %w", err)
	}
	return count, nil
}
