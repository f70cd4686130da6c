// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/halalan/auth"
	"github.com/danielhkuo/halalan/models"
	"github.com/danielhkuo/halalan/notify"
)

// PopulateEligibles creates one eligibility record per continuing student
// matching the organization's member requirement, each with a freshly
// generated single-use voting credential. The plaintext credential is
// enqueued for email delivery; only its bcrypt hash touches the database.
//
// A failed enqueue (or a student whose credential cannot be generated) is
// logged and skipped; it never blocks the remaining records. Existing
// (election, student) pairs are skipped, so the call is safe to repeat.
// Returns the number of records created.
func PopulateEligibles(db *sql.DB, q *notify.Queue, electionID, requirement string, now time.Time) (int, error) {
	query := `
		SELECT student_number, first_name, last_name, email, course_code
		FROM student WHERE enrollment_status = $1
	`
	args := []interface{}{models.EnrollmentContinuing}
	if requirement != models.RequirementAny {
		query += ` AND course_code = $2`
		args = append(args, requirement)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.StudentNumber, &s.FirstName, &s.LastName, &s.Email, &s.CourseCode); err != nil {
			return 0, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read students: %w", err)
	}

	created := 0
	for _, s := range students {
		var exists bool
		err := db.QueryRow(`
			SELECT EXISTS(
				SELECT 1 FROM eligible
				WHERE election_id = $1 AND student_number = $2
			)
		`, electionID, s.StudentNumber).Scan(&exists)
		if err != nil {
			return created, fmt.Errorf("failed to check eligibility record: %w", err)
		}
		if exists {
			continue
		}

		credential, err := auth.GenerateVotingCredential()
		if err != nil {
			slog.Error("failed to generate credential", "error", err, "student", s.StudentNumber)
			continue
		}
		hash, err := auth.HashCredential(credential)
		if err != nil {
			slog.Error("failed to hash credential", "error", err, "student", s.StudentNumber)
			continue
		}

		id, err := auth.GenerateID(16)
		if err != nil {
			return created, fmt.Errorf("failed to generate eligibility ID: %w", err)
		}

		_, err = db.Exec(`
			INSERT INTO eligible (id, election_id, student_number, credential_hash, has_voted, created_at)
			VALUES ($1, $2, $3, $4, FALSE, $5)
		`, id, electionID, s.StudentNumber, hash, now)
		if err != nil {
			return created, fmt.Errorf("failed to insert eligibility record: %w", err)
		}
		created++

		// Credential delivery is best-effort; the record stands either way.
		if q != nil {
			err = q.Enqueue(notify.Message{
				Recipient: s.Email,
				Template:  notify.TemplateVotingCredential,
				Payload: map[string]string{
					"first_name": s.FirstName,
					"credential": credential,
					"election":   electionID,
				},
			})
			if err != nil {
				slog.Warn("failed to enqueue credential notification",
					"error", err, "student", s.StudentNumber)
			}
		}
	}

	slog.Info("eligibility registry populated",
		"election_id", electionID, "requirement", requirement, "created", created)

	return created, nil
}

// AuthenticateVoter checks a presented voting credential against the
// stored hash for the (election, student) pair. A missing eligibility
// record and a wrong credential are indistinguishable to the caller.
func AuthenticateVoter(db *sql.DB, electionID, studentNumber, credential string) error {
	var storedHash string
	err := db.QueryRow(`
		SELECT credential_hash FROM eligible
		WHERE election_id = $1 AND student_number = $2
	`, electionID, studentNumber).Scan(&storedHash)
	if err == sql.ErrNoRows {
		return models.InvalidCredential("credential does not match")
	}
	if err != nil {
		return fmt.Errorf("failed to query eligibility record: %w", err)
	}

	if !auth.VerifyCredential(storedHash, credential) {
		return models.InvalidCredential("credential does not match")
	}
	return nil
}
