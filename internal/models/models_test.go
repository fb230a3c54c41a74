package models

import "testing"

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in   string
		want Position
	}{
		{"QB", PositionQB},
		{"rb", PositionRB},
		{" WR ", PositionWR},
		{"TE", PositionTE},
		{"K", PositionK},
		{"DST", PositionDST},
		{"DEF", PositionDST},
		{"D/ST", PositionDST},
		{"RB12", PositionUnknown},
		{"LB", PositionUnknown},
		{"", PositionUnknown},
	}

	for _, tt := range tests {
		if got := ParsePosition(tt.in); got != tt.want {
			t.Errorf("ParsePosition(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewRosterCompositionHasAllPositions(t *testing.T) {
	c := NewRosterComposition()
	if len(c) != 6 {
		t.Fatalf("expected 6 positions, got %d", len(c))
	}
	for _, pos := range Positions {
		n, ok := c[pos]
		if !ok {
			t.Errorf("position %s missing", pos)
		}
		if n != 0 {
			t.Errorf("position %s = %d, want 0", pos, n)
		}
	}
	if c.Total() != 0 {
		t.Errorf("expected total 0, got %d", c.Total())
	}
}

func TestParseEcrType(t *testing.T) {
	if got, ok := ParseEcrType("Positional"); !ok || got != EcrPositional {
		t.Errorf("expected positional, got %q ok=%v", got, ok)
	}
	if got, ok := ParseEcrType("dynasty"); ok || got != EcrOverall {
		t.Errorf("expected fallback to overall, got %q ok=%v", got, ok)
	}
}

func TestRankingFor(t *testing.T) {
	ecr := 12.5
	p := PlayerRecord{Name: "x", Positional: Ranking{ECR: &ecr}}
	if r := p.RankingFor(EcrPositional); r.ECR == nil || *r.ECR != 12.5 {
		t.Errorf("expected positional ECR 12.5, got %+v", r)
	}
	if r := p.RankingFor(EcrOverall); r.ECR != nil {
		t.Errorf("expected empty overall ranking, got %+v", r)
	}
}
