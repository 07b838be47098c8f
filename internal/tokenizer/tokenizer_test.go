package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{}},
		{"simple lowercase", "hello world", []string{"hello", "world"}},
		{"with punctuation", "Fed signals rate-cut!", []string{"fed", "signals", "rate", "cut"}},
		{"with numbers", "Bitcoin surges past 65,000", []string{"bitcoin", "surges", "past", "65", "000"}},
		{"underscore kept", "market_cap rises", []string{"market_cap", "rises"}},
		{"dollar symbol stripped", "$AAPL up 3%", []string{"aapl", "up", "3"}},
		{"leading/trailing spaces", "  hello world  ", []string{"hello", "world"}},
		{"tabs and newlines", "hello\tworld\nagain", []string{"hello", "world", "again"}},
		{"only symbols", "!@#$%^", []string{}},
		{"all caps word", "HELLO WORLD", []string{"hello", "world"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	input := "Apple earnings beat forecast; NASDAQ:AAPL rallies."
	first := Tokenize(input)

	// Interleave unrelated calls; output must not depend on prior state
	Tokenize("something else entirely")
	KeyTerms(Tokenize("Bitcoin ETF"), "Bitcoin ETF")

	for i := 0; i < 5; i++ {
		if got := Tokenize(input); !reflect.DeepEqual(got, first) {
			t.Fatalf("Tokenize not deterministic: run %d got %v, want %v", i, got, first)
		}
	}
}

func TestIsKeyTerm(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"fed", true},
		{"earnings", true},
		{"q3", false}, // too short
		{"the", false},
		{"into", false},
		{"2024", false},
		{"3com", false},
		{"abc123", true},
		{"market_cap", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := IsKeyTerm(tt.token); got != tt.want {
				t.Errorf("IsKeyTerm(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestFinancialTerms(t *testing.T) {
	got := FinancialTerms("Apple Inc reported revenue growth. Shares of $AAPL and NVDA rose on the interest rate news.")

	want := map[string]bool{
		"apple inc":     true,
		"shares":        true,
		"aapl":          true,
		"nvda":          true,
		"revenue":       true,
		"growth":        true,
		"interest_rate": true,
	}
	gotSet := make(map[string]bool)
	for _, term := range got {
		if gotSet[term] {
			t.Errorf("duplicate term %q", term)
		}
		gotSet[term] = true
	}
	for term := range want {
		if !gotSet[term] {
			t.Errorf("expected term %q in %v", term, got)
		}
	}
}

func TestKeyTerms(t *testing.T) {
	raw := "Fed signals rate cut"
	got := KeyTerms(Tokenize(raw), raw)

	// Tokens first, then financial terms not already present
	want := []string{"fed", "signals", "rate", "cut"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("KeyTerms = %v, want %v", got, want)
	}

	raw = "The merger of Acme and Globex"
	got = KeyTerms(Tokenize(raw), raw)
	want = []string{"merger", "acme", "globex", "the"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("KeyTerms = %v, want %v", got, want)
	}
}
