package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CategoryKeywords associates a target category with the keywords counted during content analysis.
type CategoryKeywords struct {
	Category string   `yaml:"category" json:"category"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// SourcePattern assigns a category to any source id containing one of the fragments.
type SourcePattern struct {
	Contains   []string `yaml:"contains" json:"contains"`
	Category   string   `yaml:"category" json:"category"`
	Confidence float64  `yaml:"confidence" json:"confidence"`
	Reason     string   `yaml:"reason" json:"reason"`
}

// MigrationRule moves an article to Category when its text contains any of the keywords.
type MigrationRule struct {
	Contains []string `yaml:"contains" json:"contains"`
	Category string   `yaml:"category" json:"category"`
}

// Migration is the static table entry for one legacy category.
type Migration struct {
	DefaultCategory string          `yaml:"default_category" json:"default_category"`
	Rules           []MigrationRule `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// Category is a taxonomy entry with its display name.
type Category struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Taxonomy holds every table consulted by the recategorization engine.
// Slices are ordered; earlier entries win ties.
type Taxonomy struct {
	Categories       []Category           `yaml:"categories" json:"categories"`
	ContentKeywords  []CategoryKeywords   `yaml:"content_keywords" json:"content_keywords"`
	SourceCategories map[string]string    `yaml:"source_categories" json:"source_categories"`
	SourcePatterns   []SourcePattern      `yaml:"source_patterns" json:"source_patterns"`
	Migrations       map[string]Migration `yaml:"migrations" json:"migrations"`
	FallbackCategory string               `yaml:"fallback_category" json:"fallback_category"`
}

// DisplayName returns the human readable name of a category, or the id itself when unknown.
func (t *Taxonomy) DisplayName(id string) string {
	for _, c := range t.Categories {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}

// DefaultTaxonomy returns the built-in category taxonomy.
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{
		Categories: []Category{
			{ID: "markets", Name: "Markets"},
			{ID: "earnings", Name: "Earnings"},
			{ID: "ma", Name: "M&A"},
			{ID: "crypto", Name: "Crypto"},
			{ID: "macro", Name: "Economics"},
			{ID: "technology", Name: "Technology"},
			{ID: "research", Name: "Research"},
			{ID: "central-banking", Name: "Central Banking"},
			{ID: "commodities", Name: "Commodities"},
			{ID: "regulation", Name: "Regulation"},
			{ID: "videos", Name: "Videos"},
			{ID: "blogs", Name: "Analysis"},
			{ID: "news", Name: "News"},
			{ID: "podcasts", Name: "Podcasts"},
		},
		ContentKeywords: []CategoryKeywords{
			{Category: "earnings", Keywords: []string{
				"earnings", "quarterly", "q1", "q2", "q3", "q4", "revenue", "profit", "eps",
				"earnings per share", "guidance", "forecast", "beat", "miss", "results", "quarterly results",
			}},
			{Category: "ma", Keywords: []string{
				"merger", "acquisition", "takeover", "deal", "buyout", "lbo", "acquired", "merge",
				"consolidation", "joint venture", "spin-off", "divestiture",
			}},
			{Category: "crypto", Keywords: []string{
				"bitcoin", "crypto", "cryptocurrency", "blockchain", "ethereum", "defi",
				"nft", "digital currency", "mining", "wallet", "exchange", "altcoin", "binance",
			}},
			{Category: "central-banking", Keywords: []string{
				"fed", "federal reserve", "ecb", "boe", "boj", "central bank", "interest rate",
				"rate cut", "rate hike", "quantitative easing", "qe", "fomc", "jerome powell",
				"monetary policy", "fed meeting", "fed minutes",
			}},
			{Category: "commodities", Keywords: []string{
				"gold", "silver", "oil", "crude", "gas", "wheat", "corn", "copper", "aluminum",
				"commodity", "commodities", "futures", "wti", "brent", "natural gas", "precious metals",
			}},
			{Category: "regulation", Keywords: []string{
				"regulation", "regulatory", "sec", "cftc", "compliance", "rule", "enforcement",
				"fine", "penalty", "investigation", "oversight", "supervision",
			}},
		},
		SourceCategories: map[string]string{
			"fed-speeches":           "central-banking",
			"ecb-news":               "central-banking",
			"boe-updates":            "central-banking",
			"cepr-discussion-papers": "research",
			"nber-papers":            "research",
			"ssrn-papers":            "research",
			"coindesk":               "crypto",
			"cointelegraph":          "crypto",
			"crypto-news":            "crypto",
		},
		SourcePatterns: []SourcePattern{
			{Contains: []string{"research", "paper", "study"}, Category: "research", Confidence: 0.7, Reason: "Research source pattern"},
			{Contains: []string{"fed", "central", "monetary"}, Category: "central-banking", Confidence: 0.7, Reason: "Central bank source pattern"},
			{Contains: []string{"tech", "ai", "crypto"}, Category: "technology", Confidence: 0.6, Reason: "Tech source pattern"},
		},
		Migrations: map[string]Migration{
			"markets": {DefaultCategory: "markets", Rules: []MigrationRule{
				{Contains: []string{"earnings", "quarterly", "q1", "q2", "q3", "q4", "revenue", "profit"}, Category: "earnings"},
				{Contains: []string{"merger", "acquisition", "deal", "takeover", "buyout"}, Category: "ma"},
				{Contains: []string{"bitcoin", "crypto", "cryptocurrency", "ethereum", "blockchain"}, Category: "crypto"},
				{Contains: []string{"gold", "oil", "commodity", "commodities", "copper", "wheat"}, Category: "commodities"},
				{Contains: []string{"fed", "federal reserve", "central bank", "interest rate", "fomc"}, Category: "central-banking"},
			}},
			"macro": {DefaultCategory: "macro", Rules: []MigrationRule{
				{Contains: []string{"fed", "federal reserve", "ecb", "central bank", "monetary policy"}, Category: "central-banking"},
			}},
			"technology": {DefaultCategory: "technology", Rules: []MigrationRule{
				{Contains: []string{"bitcoin", "crypto", "cryptocurrency", "blockchain", "defi"}, Category: "crypto"},
			}},
			"policy": {DefaultCategory: "policy", Rules: []MigrationRule{
				{Contains: []string{"regulation", "sec", "cftc", "compliance", "enforcement"}, Category: "regulation"},
				{Contains: []string{"fed", "central bank", "monetary"}, Category: "central-banking"},
			}},
			"research":  {DefaultCategory: "research"},
			"videos":    {DefaultCategory: "videos"},
			"blogs":     {DefaultCategory: "blogs"},
			"news":      {DefaultCategory: "news"},
			"filings":   {DefaultCategory: "news"},
			"culture":   {DefaultCategory: "blogs"},
			"non-money": {DefaultCategory: "blogs"},
		},
		FallbackCategory: "markets",
	}
}

// LoadTaxonomy reads a YAML taxonomy file. Sections missing from the file keep their built-in defaults.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file %s: %w", path, err)
	}

	var fromFile Taxonomy
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy file %s: %w", path, err)
	}

	t := DefaultTaxonomy()
	if len(fromFile.Categories) > 0 {
		t.Categories = fromFile.Categories
	}
	if len(fromFile.ContentKeywords) > 0 {
		t.ContentKeywords = fromFile.ContentKeywords
	}
	if len(fromFile.SourceCategories) > 0 {
		t.SourceCategories = fromFile.SourceCategories
	}
	if len(fromFile.SourcePatterns) > 0 {
		t.SourcePatterns = fromFile.SourcePatterns
	}
	if len(fromFile.Migrations) > 0 {
		t.Migrations = fromFile.Migrations
	}
	if fromFile.FallbackCategory != "" {
		t.FallbackCategory = fromFile.FallbackCategory
	}

	if problems := t.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid taxonomy file %s: %v", path, problems)
	}
	return t, nil
}

// Validate reports structural problems with the taxonomy.
func (t *Taxonomy) Validate() []string {
	var problems []string

	if t.FallbackCategory == "" {
		problems = append(problems, "fallback_category cannot be empty")
	}
	for i, ck := range t.ContentKeywords {
		if ck.Category == "" {
			problems = append(problems, fmt.Sprintf("content_keywords[%d] has no category", i))
		}
		for _, kw := range ck.Keywords {
			if kw == "" {
				problems = append(problems, fmt.Sprintf("content_keywords[%d] contains an empty keyword", i))
				break
			}
		}
	}
	for i, sp := range t.SourcePatterns {
		if sp.Category == "" || len(sp.Contains) == 0 {
			problems = append(problems, fmt.Sprintf("source_patterns[%d] needs a category and at least one fragment", i))
		}
		if sp.Confidence < 0 || sp.Confidence > 1 {
			problems = append(problems, fmt.Sprintf("source_patterns[%d] confidence must be within [0,1]", i))
		}
	}
	for legacy, m := range t.Migrations {
		for i, r := range m.Rules {
			if r.Category == "" || len(r.Contains) == 0 {
				problems = append(problems, fmt.Sprintf("migrations[%s].rules[%d] needs a category and keywords", legacy, i))
			}
		}
	}

	return problems
}
