// Package ledger records which reminders were already sent.
//
// The ledger is a mapping from a bucket key (a calendar date or a year-month)
// to the names claimed in that bucket. A claim reserves a (bucket, name,
// threshold) triple and succeeds at most once; callers only send a message
// after a successful claim.
//
// Two backends exist: DocumentLedger rewrites a human-readable JSON document
// on every claim, SQLiteLedger keeps one row per claim. The read-modify-write
// sequence of DocumentLedger is not atomic across processes; callers hold a
// RunLock for the duration of a run.
package ledger
