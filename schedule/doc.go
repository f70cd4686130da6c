// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package schedule runs winner resolution at each election's voting-end
instant.

# Job Store

Jobs persist in a bbolt file keyed by election id, so exactly one job
exists per election and scheduling again replaces the previous job:

	sched, _ := schedule.Open("jobs.db", resolveFn, clk)
	sched.Start()
	defer sched.Stop()

	_ = sched.Schedule(electionID, e.VotingEnd)

The store survives process restarts; on the next tick after a restart,
overdue jobs fire immediately.

# Firing Semantics

A polling loop compares stored fire times against the injected Clock.
A fired job retires on resolver success or AlreadyResolved (the
resolver's idempotency guard makes duplicate fires harmless); any other
error is retried on later ticks up to a bounded attempt budget, then
abandoned with an error log.
*/
package schedule
