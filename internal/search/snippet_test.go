package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnippet(t *testing.T) {
	summary := strings.Repeat("x", 100) + " bitcoin " + strings.Repeat("y", 200)
	want := "..." + strings.Repeat("x", 49) + " <mark>bitcoin</mark> " + strings.Repeat("y", 92) + "..."

	assert.Equal(t, want, Snippet(summary, "ignored", []string{"bitcoin"}, 150, 50))
}

func TestSnippetFallsBackToTitle(t *testing.T) {
	got := Snippet("", "Fed signals rate cut", []string{"rate"}, 150, 50)
	assert.Equal(t, "Fed signals <mark>rate</mark> cut", got)
}

func TestSnippetWithoutMatchStartsAtBeginning(t *testing.T) {
	summary := strings.Repeat("z", 200)
	got := Snippet(summary, "", []string{"oil"}, 150, 50)
	assert.Equal(t, strings.Repeat("z", 150)+"...", got)
}

func TestSnippetIsRuneSafe(t *testing.T) {
	got := Snippet("Café prices rise in Zürich", "", []string{"prices"}, 150, 50)
	assert.Equal(t, "Café <mark>prices</mark> rise in Zürich", got)

	got = Snippet(strings.Repeat("é", 60)+" oil", "", []string{"oil"}, 10, 5)
	assert.Equal(t, "..."+strings.Repeat("é", 4)+" <mark>oil</mark>", got)
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		terms []string
		want  string
	}{
		{"case insensitive", "Fed and FED", []string{"fed"}, "<mark>Fed</mark> and <mark>FED</mark>"},
		{"longest term wins", "Marks market", []string{"mark", "market"}, "<mark>Mark</mark>s <mark>market</mark>"},
		{"tag text is not rematched", "mark", []string{"mark"}, "<mark>mark</mark>"},
		{"no terms", "plain", nil, "plain"},
		{"regex metacharacters", "a+b rally", []string{"a+b"}, "<mark>a+b</mark> rally"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Highlight(tt.text, tt.terms))
		})
	}
}

func TestBrowseSnippet(t *testing.T) {
	assert.Equal(t, "Summary text", BrowseSnippet("Summary text", "Title", 150))
	assert.Equal(t, "Short title", BrowseSnippet("", "Short title", 150))
	assert.Equal(t, strings.Repeat("t", 150)+"...", BrowseSnippet("", strings.Repeat("t", 200), 150))
}
