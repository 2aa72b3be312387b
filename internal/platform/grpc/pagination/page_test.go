package pagination

import "testing"

func TestClampPageSize(t *testing.T) {
	cfg := PageSizeConfig{Default: 20, Max: 100}
	tests := []struct {
		requested int32
		want      int
	}{
		{0, 20},
		{-5, 20},
		{7, 7},
		{100, 100},
		{500, 100},
	}
	for _, tt := range tests {
		if got := ClampPageSize(tt.requested, cfg); got != tt.want {
			t.Fatalf("ClampPageSize(%d) = %d, want %d", tt.requested, got, tt.want)
		}
	}
	if got := ClampPageSize(0, PageSizeConfig{}); got != 1 {
		t.Fatalf("ClampPageSize with empty config = %d, want 1", got)
	}
}

func TestNormalizeOrderBy(t *testing.T) {
	cfg := OrderByConfig{Default: "address", Allowed: []string{"address", "deadline"}}
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "address"},
		{in: "deadline", want: "deadline"},
		{in: " Deadline ", want: "deadline"},
		{in: "goal", wantErr: true},
	}
	for _, tt := range tests {
		got, err := NormalizeOrderBy(tt.in, cfg)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("NormalizeOrderBy(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("NormalizeOrderBy(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}
