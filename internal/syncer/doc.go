// Package syncer drains the engine's sync log to a remote peer and pulls
// remote changes back, on an interval. Sync is best effort: failures are
// isolated per entry and per collection, counted, and retried on the next
// pass. Conflicts resolve by configured policy, not consensus.
package syncer
