package checked

import (
	"math/bits"

	apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"
)

var (
	// ErrOverflow indicates an addition that would exceed the amount range.
	ErrOverflow = apperrors.New(apperrors.CodeOverflow, "arithmetic overflow")
	// ErrInsufficientFunds indicates a subtraction below zero.
	ErrInsufficientFunds = apperrors.New(apperrors.CodeInsufficientFunds, "insufficient funds")
)

// Add returns a+b or ErrOverflow.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns a-b or ErrInsufficientFunds.
func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrInsufficientFunds
	}
	return diff, nil
}

// Sum adds all values, failing on the first overflow.
func Sum(values ...uint64) (uint64, error) {
	var total uint64
	for _, v := range values {
		next, err := Add(total, v)
		if err != nil {
			return 0, err
		}
		total = next
	}
	return total, nil
}

// Increment adds one to a counter.
func Increment(n uint32) (uint32, error) {
	if n == ^uint32(0) {
		return 0, ErrOverflow
	}
	return n + 1, nil
}
