// Package api exposes the article search core over HTTP.
package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/markets-feeds/model"
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// SearchParams are the parsed query parameters of a search or listing request.
type SearchParams struct {
	Query   string
	Filters model.SearchFilters
	Page    int
	Limit   int
}

var validPriorities = map[model.Priority]struct{}{
	model.PriorityBreaking: {},
	model.PriorityHigh:     {},
	model.PriorityNormal:   {},
	model.PriorityLow:      {},
}

// dateOnly is accepted for from/to in addition to RFC 3339.
const dateOnly = "2006-01-02"

// ParseSearchParams reads q, category, source, priority, from, to, page, and limit.
// List parameters may repeat or hold comma-separated values.
func ParseSearchParams(c *gin.Context) (SearchParams, *ValidationResult) {
	result := &ValidationResult{Valid: true}
	params := SearchParams{
		Query: c.Query("q"),
		Filters: model.SearchFilters{
			Categories: listParam(c, "category"),
			Sources:    listParam(c, "source"),
		},
	}

	for _, p := range listParam(c, "priority") {
		priority := model.Priority(strings.ToLower(p))
		if _, ok := validPriorities[priority]; !ok {
			result.AddError("priority", fmt.Sprintf("Unknown priority '%s'", p))
			continue
		}
		params.Filters.Priorities = append(params.Filters.Priorities, priority)
	}

	params.Filters.DateRange = parseDateRange(c, result)
	params.Page = intParam(c, "page", 1, 1, result)
	params.Limit = intParam(c, "limit", 0, 1, result)
	return params, result
}

// listParam collects a repeated and/or comma-separated parameter, dropping blanks.
func listParam(c *gin.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryArray(name) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// intParam parses an optional integer parameter that must be at least minValue.
func intParam(c *gin.Context, name string, fallback, minValue int, result *ValidationResult) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		result.AddError(name, fmt.Sprintf("'%s' is not an integer", raw))
		return fallback
	}
	if n < minValue {
		result.AddError(name, fmt.Sprintf("must be at least %d", minValue))
		return fallback
	}
	return n
}

// parseDateRange builds the inclusive range from from/to. A date-only "to" covers that whole day.
func parseDateRange(c *gin.Context, result *ValidationResult) *model.DateRange {
	from, fromOK := parseTime(c.Query("from"), false, "from", result)
	to, toOK := parseTime(c.Query("to"), true, "to", result)
	if !fromOK && !toOK {
		return nil
	}
	if !toOK {
		to = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
	}
	if to.Before(from) {
		result.AddError("to", "must not be before 'from'")
		return nil
	}
	return &model.DateRange{Start: from, End: to}
}

func parseTime(raw string, endOfDay bool, field string, result *ValidationResult) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		result.AddError(field, fmt.Sprintf("'%s' is neither RFC 3339 nor YYYY-MM-DD", raw))
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, true
}
