// Package checked holds the arithmetic and clock primitives every instruction
// handler relies on.
//
// Amounts are unsigned smallest-unit integers. Additions never wrap: they fail
// with ErrOverflow. Subtractions never go negative: they fail with
// ErrInsufficientFunds. Time is read once per instruction into a Clock value
// and passed down by value, so every deadline comparison inside one
// instruction observes the same instant.
package checked
