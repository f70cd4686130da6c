// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Candidacy and party-list status constants
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Election status constants
const (
	ElectionOngoing  = "ongoing"
	ElectionFinished = "finished"
)

// Decision constants for candidacy and party-list review
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// EnrollmentContinuing is the enrollment status code for a continuing
// student. Only continuing students may vote or file a candidacy.
const EnrollmentContinuing = 1

// RequirementAny opens an election to every continuing student
// regardless of course.
const RequirementAny = "Any"

// AbstainSentinel marks a single-winner slot the voter abstained from
// inside the selections list.
const AbstainSentinel = "abstain"

// Request types

type PositionInput struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type CreateElectionRequest struct {
	Name           string          `json:"name"`
	OrganizationID string          `json:"organization_id"`
	SchoolYear     string          `json:"school_year"`
	Semester       string          `json:"semester"`
	Positions      []PositionInput `json:"positions"`

	ElectionStart time.Time `json:"election_start"`
	ElectionEnd   time.Time `json:"election_end"`
	FilingStart   time.Time `json:"filing_start"`
	FilingEnd     time.Time `json:"filing_end"`
	CampaignStart time.Time `json:"campaign_start"`
	CampaignEnd   time.Time `json:"campaign_end"`
	VotingStart   time.Time `json:"voting_start"`
	VotingEnd     time.Time `json:"voting_end"`
	AppealStart   time.Time `json:"appeal_start"`
	AppealEnd     time.Time `json:"appeal_end"`
}

type SubmitCandidacyRequest struct {
	StudentNumber    string `json:"student_number"`
	PositionName     string `json:"position_name"`
	PartyListName    string `json:"party_list_name,omitempty"`
	Motto            string `json:"motto,omitempty"`
	Platform         string `json:"platform"`
	VerificationCode string `json:"verification_code"`
	DisplayPhotoURL  string `json:"display_photo_url,omitempty"`
	GradesCertURL    string `json:"grades_cert_url,omitempty"`
}

type DecisionRequest struct {
	Decision     string `json:"decision"`
	RejectReason string `json:"reject_reason,omitempty"`
}

type SubmitPartyListRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Platforms    string `json:"platforms,omitempty"`
	EmailAddress string `json:"email_address,omitempty"`
}

type AuthenticateVoterRequest struct {
	StudentNumber string `json:"student_number"`
	Credential    string `json:"credential"`
}

// BallotSelection names one candidate for a position, or carries the
// abstain sentinel as the candidate ID for a single-winner slot.
type BallotSelection struct {
	PositionName string `json:"position_name"`
	CandidateID  string `json:"candidate_id"`
}

type CastBallotRequest struct {
	StudentNumber      string            `json:"student_number"`
	Credential         string            `json:"credential"`
	Selections         []BallotSelection `json:"selections"`
	AbstainedPositions []string          `json:"abstained_positions,omitempty"`
}

// candidate_id -> stars (1 to 5)
type RateCandidatesRequest struct {
	StudentNumber string         `json:"student_number"`
	Stars         map[string]int `json:"stars"`
}

type IssueCodeRequest struct {
	StudentNumber string `json:"student_number"`
}

// Response types

type CreateElectionResponse struct {
	ElectionID    string `json:"election_id"`
	EligibleCount int    `json:"eligible_count"`
}

type SubmitCandidacyResponse struct {
	CandidacyID string `json:"candidacy_id"`
	Status      string `json:"status"`
}

type DecideCandidacyResponse struct {
	CandidacyID string `json:"candidacy_id"`
	Status      string `json:"status"`
	CandidateID string `json:"candidate_id,omitempty"`
}

type SubmitPartyListResponse struct {
	PartyListID string `json:"party_list_id"`
	Status      string `json:"status"`
}

type CastBallotResponse struct {
	VotesRecorded int    `json:"votes_recorded"`
	Abstentions   int    `json:"abstentions"`
	ReceiptURL    string `json:"receipt_url,omitempty"`
	Message       string `json:"message"`
}

type IssueCodeResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ResolveResponse struct {
	ElectionID string   `json:"election_id"`
	Winners    []Winner `json:"winners"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Domain types

type Election struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	OrganizationID string    `json:"organization_id"`
	Status         string    `json:"status"`
	SchoolYear     string    `json:"school_year"`
	Semester       string    `json:"semester"`
	CreatedAt      time.Time `json:"created_at"`

	ElectionStart time.Time `json:"election_start"`
	ElectionEnd   time.Time `json:"election_end"`
	FilingStart   time.Time `json:"filing_start"`
	FilingEnd     time.Time `json:"filing_end"`
	CampaignStart time.Time `json:"campaign_start"`
	CampaignEnd   time.Time `json:"campaign_end"`
	VotingStart   time.Time `json:"voting_start"`
	VotingEnd     time.Time `json:"voting_end"`
	AppealStart   time.Time `json:"appeal_start"`
	AppealEnd     time.Time `json:"appeal_end"`
}

type Position struct {
	ID         string `json:"id"`
	ElectionID string `json:"election_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
}

type Student struct {
	StudentNumber    string `json:"student_number"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Email            string `json:"email"`
	CourseCode       string `json:"course_code"`
	EnrollmentStatus int    `json:"enrollment_status"`
}

type Eligible struct {
	ID            string `json:"id"`
	ElectionID    string `json:"election_id"`
	StudentNumber string `json:"student_number"`
	HasVoted      bool   `json:"has_voted"`
}

type Candidacy struct {
	ID            string    `json:"id"`
	ElectionID    string    `json:"election_id"`
	StudentNumber string    `json:"student_number"`
	PositionName  string    `json:"position_name"`
	PartyListID   *string   `json:"party_list_id,omitempty"`
	Motto         string    `json:"motto,omitempty"`
	Platform      string    `json:"platform"`
	DisplayPhoto  string    `json:"display_photo,omitempty"`
	GradesCert    string    `json:"grades_cert,omitempty"`
	Status        string    `json:"status"`
	RejectReason  string    `json:"reject_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type PartyList struct {
	ID           string    `json:"id"`
	ElectionID   string    `json:"election_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Platforms    string    `json:"platforms,omitempty"`
	EmailAddress string    `json:"email_address,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type Candidate struct {
	ID             string  `json:"id"`
	ElectionID     string  `json:"election_id"`
	StudentNumber  string  `json:"student_number"`
	PositionName   string  `json:"position_name"`
	PartyListID    *string `json:"party_list_id,omitempty"`
	DisplayPhoto   string  `json:"display_photo,omitempty"`
	Votes          int     `json:"votes"`
	TimesAbstained int     `json:"times_abstained"`
	Rating         float64 `json:"rating"`
	TimesRated     int     `json:"times_rated"`
	OneStar        int     `json:"one_star"`
	TwoStar        int     `json:"two_star"`
	ThreeStar      int     `json:"three_star"`
	FourStar       int     `json:"four_star"`
	FiveStar       int     `json:"five_star"`
}

type Winner struct {
	ID            string    `json:"id"`
	ElectionID    string    `json:"election_id"`
	PositionName  string    `json:"position_name"`
	StudentNumber string    `json:"student_number"`
	Votes         int       `json:"votes"`
	IsTied        bool      `json:"is_tied"`
	CreatedAt     time.Time `json:"created_at"`
}

type Analytics struct {
	ElectionID   string `json:"election_id"`
	VotesCount   int    `json:"votes_count"`
	AbstainCount int    `json:"abstain_count"`
}

type ElectionDetail struct {
	Election  Election   `json:"election"`
	Phase     string     `json:"phase"`
	Positions []Position `json:"positions"`
}
