// Package runtime runs one program instruction against a set of cloned
// accounts and enforces what the program is allowed to change.
//
// An Invocation snapshots the accounts before the program runs. The program
// may call the system program through the Invocation; each such call first
// verifies the program's own changes so far and then moves the baseline
// forward, so system-authorized changes are never attributed to the program.
// After the program returns, Verify applies the same rules one last time.
package runtime
