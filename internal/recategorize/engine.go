// Package recategorize maps articles from coarse legacy categories into the finer taxonomy
// using content keywords, source ids, and a static migration table, in that order.
package recategorize

import (
	"fmt"
	"strings"

	"github.com/gcbaptista/markets-feeds/config"
	"github.com/gcbaptista/markets-feeds/model"
)

// Stage confidence thresholds and fixed confidences.
const (
	contentAcceptThreshold = 0.7
	sourceAcceptThreshold  = 0.6
	contentConfidenceCap   = 0.95

	sourceMappingConfidence = 0.8
	ruleMatchConfidence     = 0.6
	ruleDefaultConfidence   = 0.4
	fallbackConfidence      = 0.5
)

type candidate struct {
	category   string
	confidence float64
	reason     string
}

// Engine is stateless apart from its taxonomy and safe for concurrent use.
type Engine struct {
	taxonomy *config.Taxonomy
}

// NewEngine creates an engine over the given taxonomy; nil selects the built-in one.
func NewEngine(taxonomy *config.Taxonomy) *Engine {
	if taxonomy == nil {
		taxonomy = config.DefaultTaxonomy()
	}
	return &Engine{taxonomy: taxonomy}
}

// Taxonomy returns the taxonomy the engine classifies into.
func (e *Engine) Taxonomy() *config.Taxonomy {
	return e.taxonomy
}

// Recategorize classifies one article. It never fails; the absence of any signal
// resolves to the migration default or the global fallback category.
func (e *Engine) Recategorize(article *model.Article) model.RecategorizationResult {
	result := model.RecategorizationResult{
		ArticleID:        article.ID,
		OriginalCategory: article.Category,
	}

	if c := e.byContent(article); c.confidence > contentAcceptThreshold {
		result.NewCategory, result.Confidence = c.category, c.confidence
		result.Reason = "Content analysis: " + c.reason
		return result
	}

	if c := e.bySource(article); c.confidence > sourceAcceptThreshold {
		result.NewCategory, result.Confidence = c.category, c.confidence
		result.Reason = "Source analysis: " + c.reason
		return result
	}

	c := e.byRules(article)
	result.NewCategory, result.Confidence = c.category, c.confidence
	result.Reason = "Rule-based: " + c.reason
	return result
}

// byContent scores every category by keyword occurrences in title, summary, and tags.
// Ties go to the category declared first.
func (e *Engine) byContent(article *model.Article) candidate {
	content := strings.ToLower(article.Title + " " + article.Summary + " " + strings.Join(article.Tags, " "))

	bestCategory, bestScore, total := "", 0, 0
	for _, ck := range e.taxonomy.ContentKeywords {
		score := 0
		for _, keyword := range ck.Keywords {
			score += strings.Count(content, strings.ToLower(keyword))
		}
		if score == 0 {
			continue
		}
		total += score
		if score > bestScore {
			bestCategory, bestScore = ck.Category, score
		}
	}

	if total == 0 {
		return candidate{category: article.Category, confidence: 0, reason: "No keyword matches"}
	}

	confidence := float64(bestScore) / float64(total)
	if confidence > contentConfidenceCap {
		confidence = contentConfidenceCap
	}
	return candidate{
		category:   bestCategory,
		confidence: confidence,
		reason:     fmt.Sprintf("Keywords matched (score: %d)", bestScore),
	}
}

// bySource applies the exact source map, then the substring patterns in order.
func (e *Engine) bySource(article *model.Article) candidate {
	sourceID := strings.ToLower(article.SourceID)

	if category, ok := e.taxonomy.SourceCategories[sourceID]; ok {
		return candidate{category: category, confidence: sourceMappingConfidence, reason: "Source mapping: " + sourceID}
	}

	for _, pattern := range e.taxonomy.SourcePatterns {
		if containsAny(sourceID, pattern.Contains) {
			return candidate{category: pattern.Category, confidence: pattern.Confidence, reason: pattern.Reason}
		}
	}

	return candidate{category: article.Category, confidence: 0, reason: "No source pattern match"}
}

// byRules walks the migration table entry of the article's original category.
func (e *Engine) byRules(article *model.Article) candidate {
	migration, ok := e.taxonomy.Migrations[article.Category]
	if !ok {
		return candidate{category: e.taxonomy.FallbackCategory, confidence: fallbackConfidence, reason: "Default fallback category"}
	}

	content := strings.ToLower(article.Title + " " + article.Summary)
	for _, rule := range migration.Rules {
		if containsAny(content, rule.Contains) {
			return candidate{
				category:   rule.Category,
				confidence: ruleMatchConfidence,
				reason:     "Rule match: " + strings.Join(rule.Contains, ", "),
			}
		}
	}

	category := migration.DefaultCategory
	if category == "" {
		category = e.taxonomy.FallbackCategory
	}
	return candidate{category: category, confidence: ruleDefaultConfidence, reason: "Default migration rule"}
}

func containsAny(text string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(text, strings.ToLower(f)) {
			return true
		}
	}
	return false
}
