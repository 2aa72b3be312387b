package checked

import (
	"errors"
	"math"
	"testing"
)

func TestAdd(t *testing.T) {
	tests := []struct {
		name    string
		a, b    uint64
		want    uint64
		wantErr error
	}{
		{name: "zero", a: 0, b: 0, want: 0},
		{name: "small", a: 60, b: 40, want: 100},
		{name: "max edge", a: math.MaxUint64 - 1, b: 1, want: math.MaxUint64},
		{name: "overflow by one", a: math.MaxUint64, b: 1, wantErr: ErrOverflow},
		{name: "overflow large", a: math.MaxUint64 / 2, b: math.MaxUint64/2 + 2, wantErr: ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Add(tt.a, tt.b)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Add error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Add = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSub(t *testing.T) {
	if got, err := Sub(100, 30); err != nil || got != 70 {
		t.Fatalf("Sub(100, 30) = %d, %v", got, err)
	}
	if got, err := Sub(5, 5); err != nil || got != 0 {
		t.Fatalf("Sub(5, 5) = %d, %v", got, err)
	}
	if _, err := Sub(1, 2); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Sub(1, 2) error = %v, want %v", err, ErrInsufficientFunds)
	}
}

func TestSumStopsAtOverflow(t *testing.T) {
	if got, err := Sum(10, 20, 30); err != nil || got != 60 {
		t.Fatalf("Sum = %d, %v", got, err)
	}
	if _, err := Sum(math.MaxUint64, 0, 1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("Sum error = %v, want %v", err, ErrOverflow)
	}
}

func TestIncrement(t *testing.T) {
	if got, err := Increment(41); err != nil || got != 42 {
		t.Fatalf("Increment(41) = %d, %v", got, err)
	}
	if _, err := Increment(math.MaxUint32); !errors.Is(err, ErrOverflow) {
		t.Fatalf("Increment(max) error = %v, want %v", err, ErrOverflow)
	}
}

func TestClockDeadlineEdges(t *testing.T) {
	const deadline = int64(1_000)
	tests := []struct {
		now         int64
		wantBefore  bool
		wantReached bool
	}{
		{now: deadline - 1, wantBefore: true, wantReached: false},
		{now: deadline, wantBefore: false, wantReached: true},
		{now: deadline + 1, wantBefore: false, wantReached: true},
	}
	for _, tt := range tests {
		clock := Clock{UnixTimestamp: tt.now}
		if got := clock.Before(deadline); got != tt.wantBefore {
			t.Fatalf("Before at %d = %v, want %v", tt.now, got, tt.wantBefore)
		}
		if got := clock.Reached(deadline); got != tt.wantReached {
			t.Fatalf("Reached at %d = %v, want %v", tt.now, got, tt.wantReached)
		}
	}
}
