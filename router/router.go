// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/halalan/cliparse"
	"github.com/danielhkuo/halalan/clock"
	"github.com/danielhkuo/halalan/handlers"
	"github.com/danielhkuo/halalan/middleware"
	"github.com/danielhkuo/halalan/notify"
	"github.com/danielhkuo/halalan/receipt"
	"github.com/danielhkuo/halalan/schedule"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, clk clock.Clock, queue *notify.Queue, sched *schedule.Scheduler, receipts *receipt.Service) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	electionHandler := handlers.NewElectionHandler(db, cfg, clk, queue, sched)
	candidacyHandler := handlers.NewCandidacyHandler(db, clk, queue)
	partyListHandler := handlers.NewPartyListHandler(db, clk, queue)
	votingHandler := handlers.NewVotingHandler(db, clk, receipts)
	resultsHandler := handlers.NewResultsHandler(db, clk, queue)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Election lifecycle (admin operations)
	mux.HandleFunc("POST /elections", middleware.WithLogging(electionHandler.CreateElection))
	mux.HandleFunc("GET /elections/{id}", middleware.WithLogging(electionHandler.GetElection))
	mux.HandleFunc("DELETE /elections/{id}", middleware.WithLogging(electionHandler.DeleteElection))

	// Candidacy admission
	mux.HandleFunc("POST /verification-codes", middleware.WithLogging(candidacyHandler.IssueCode))
	mux.HandleFunc("POST /elections/{id}/candidacies", middleware.WithLogging(candidacyHandler.SubmitCandidacy))
	mux.HandleFunc("POST /candidacies/{id}/decision", middleware.WithLogging(candidacyHandler.DecideCandidacy))

	// Party lists
	mux.HandleFunc("POST /elections/{id}/party-lists", middleware.WithLogging(partyListHandler.SubmitPartyList))
	mux.HandleFunc("POST /party-lists/{id}/decision", middleware.WithLogging(partyListHandler.DecidePartyList))

	// Voting operations
	mux.HandleFunc("POST /elections/{id}/authenticate", middleware.WithLogging(votingHandler.Authenticate))
	mux.HandleFunc("POST /elections/{id}/ballots", middleware.WithLogging(votingHandler.CastBallot))
	mux.HandleFunc("POST /elections/{id}/ratings", middleware.WithLogging(votingHandler.RateCandidates))

	// Results
	mux.HandleFunc("GET /elections/{id}/winners", middleware.WithLogging(resultsHandler.GetWinners))
	mux.HandleFunc("GET /elections/{id}/analytics", middleware.WithLogging(resultsHandler.GetAnalytics))
	mux.HandleFunc("POST /elections/{id}/resolve", middleware.WithLogging(resultsHandler.Resolve))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("halalan API v1"))
	})

	return mux
}
