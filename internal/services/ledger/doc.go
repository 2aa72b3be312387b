// Package ledger is the host that runs the crowdfund program.
//
// A Bank accepts signed transactions, serializes them per account, executes
// each instruction through the runtime, and commits the resulting account
// states together with a journal entry. A transaction either commits every
// account it changed or none of them; failures are journaled with their
// error code and logs so callers can inspect what happened.
package ledger
