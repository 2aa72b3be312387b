// Package campaign models the Campaign record: its persisted layout, the lazy
// lifecycle resolution, and the pure state transitions the instruction
// handlers apply.
//
// Transitions never touch accounts or lamports. Handlers load a State, ask
// for the next State, and only write it back once every other check of the
// instruction has passed.
package campaign
