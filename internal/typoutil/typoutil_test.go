package typoutil

import (
	"reflect"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		max  int
		want int
	}{
		{"both empty", "", "", 2, 0},
		{"a empty", "", "fed", 3, 3},
		{"identical", "bitcoin", "bitcoin", 2, 0},
		{"substitution", "inflation", "inflatian", 2, 1},
		{"insertion", "rally", "rallly", 2, 1},
		{"deletion", "earnings", "earnigs", 2, 1},
		{"transposition", "bitcoin", "bitocin", 2, 1},
		{"adjacent swap inside word", "treasury", "tresaury", 2, 1},
		{"beyond limit stops early", "saturday", "sunday", 1, 2},
		{"length gap beyond limit", "oil", "crude oil", 2, 3},
		{"unicode runes", "résumé", "resume", 2, 2}, // é -> e twice
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b, tt.max)
			if got != tt.want {
				t.Errorf("Distance(%q, %q, %d) = %d, want %d", tt.a, tt.b, tt.max, got, tt.want)
			}
		})
	}
}

func TestFinderCandidates(t *testing.T) {
	vocabulary := []string{"bitcoin", "bitcoins", "inflation", "earnings", "yearnings", "rally", "rallies"}
	f := NewFinder(vocabulary)

	tests := []struct {
		name       string
		term       string
		maxDist    int
		maxResults int
		want       []string
	}{
		{"closest first", "bitcon", 2, 0, []string{"bitcoin", "bitcoins"}},
		{"limit", "bitcon", 2, 1, []string{"bitcoin"}},
		{"self excluded", "earnings", 1, 0, []string{"yearnings"}},
		{"nothing close", "oil", 1, 0, []string{}},
		{"zero distance", "rally", 0, 0, []string{}},
		{"empty term", "", 2, 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Candidates(tt.term, tt.maxDist, tt.maxResults)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Candidates(%q, %d, %d) = %v, want %v", tt.term, tt.maxDist, tt.maxResults, got, tt.want)
			}
		})
	}
}

func TestFinderCacheReturnsCopies(t *testing.T) {
	f := NewFinder([]string{"bitcoin", "bitcoins"})

	first := f.Candidates("bitcon", 2, 0)
	first[0] = "mutated"

	want := []string{"bitcoin", "bitcoins"}
	if got := f.Candidates("bitcon", 2, 0); !reflect.DeepEqual(got, want) {
		t.Errorf("cached candidates were mutated: got %v, want %v", got, want)
	}
}

func TestFinderClosest(t *testing.T) {
	f := NewFinder([]string{"rates", "ratings"})

	got, ok := f.Closest("rtaes", 1)
	if !ok || got != "rates" {
		t.Errorf("Closest(%q, 1) = %q, %v, want %q, true", "rtaes", got, ok, "rates")
	}

	if got, ok := f.Closest("treasury", 1); ok {
		t.Errorf("Closest(%q, 1) = %q, want no match", "treasury", got)
	}
}

func TestAllowedTypos(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"fed", 0},
		{"rate", 1},
		{"equity", 1},
		{"treasury", 2},
	}
	for _, tt := range tests {
		if got := AllowedTypos(tt.word, 4, 7); got != tt.want {
			t.Errorf("AllowedTypos(%q, 4, 7) = %d, want %d", tt.word, got, tt.want)
		}
	}
}
