package trend

import "testing"

func TestScoreRange(t *testing.T) {
	names := []string{
		"", "a", "DanceChallenge", "#DanceChallenge", "glowup",
		"averyveryveryverylonghashtagnamethatgoesonandon",
	}
	for _, name := range names {
		got := Score(name)
		if got < 0 || got >= 100 {
			t.Fatalf("Score(%q) = %d, want value in [0,100)", name, got)
		}
		if again := Score(name); again != got {
			t.Fatalf("Score(%q) not deterministic: %d then %d", name, got, again)
		}
	}
}

func TestScoreExact(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"#DanceChallenge", 5}, // 15 runes * 7 = 105 mod 100
		{"glowup", 42},
		{"a", 7},
		{"", 0},
	}
	for _, tt := range tests {
		if got := Score(tt.name); got != tt.want {
			t.Fatalf("Score(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestStageBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{99, StageExploding},
		{76, StageExploding},
		{75, StageRising},
		{51, StageRising},
		{50, StageEarly},
		{26, StageEarly},
		{25, StageNiche},
		{0, StageNiche},
	}
	for _, tt := range tests {
		if got := Stage(tt.score); got != tt.want {
			t.Fatalf("Stage(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
