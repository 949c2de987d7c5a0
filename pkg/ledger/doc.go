// Package ledger provides optional local persistence for reconciliation
// outcomes. The metering engine works without a ledger; wiring one in
// records every reconciliation so usage history survives beyond the
// dashboard's best-effort log path.
//
// Two backends are provided: MemoryStore for ephemeral in-process history
// and SQLiteStore for durable single-instance deployments. A
// RetentionScheduler prunes old entries on a cron schedule.
package ledger
