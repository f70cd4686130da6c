// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify decouples outbound notifications from the request path.

# Queue

The core enqueues and moves on; background workers deliver with a
bounded retry:

	q := notify.NewQueue(sender, 2, 256)
	q.Start()
	defer q.Stop()

	_ = q.Enqueue(notify.Message{
		Recipient: "student@example.edu",
		Template:  notify.TemplateVotingCredential,
		Payload:   map[string]string{"credential": cred},
	})

Enqueue never blocks: a full buffer returns ErrQueueFull, which callers
log and continue past. A delivery failure after the retry budget is
logged and dropped; it never rolls back the domain mutation that
enqueued it.

# Senders

Mailer delivers over SMTP (wneessen/go-mail). LogSender logs instead of
sending, for development and tests.
*/
package notify
