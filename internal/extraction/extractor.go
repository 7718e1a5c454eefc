// Package extraction turns a free-text renovation request into a
// structured requirement record.
package extraction

import (
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/Veraticus/renovation-quote/internal/common"
	"github.com/Veraticus/renovation-quote/internal/model"
)

const (
	// MinTextLength is the shortest accepted description, in characters.
	MinTextLength = 10
	// RecommendedMaxTextLength is advisory only.
	RecommendedMaxTextLength = 1000
)

var sizePattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:m²|m2|m\^2|sqm|square\s+met(?:er|re)s?)`)

// QualityKeywords maps a quality level to the words that signal it.
type QualityKeywords struct {
	Quality  model.Quality
	Keywords []string
}

// Config holds the keyword tables used by the extractor.
type Config struct {
	TaskKeywords    map[model.TaskType][]string
	Locations       []string
	BudgetKeywords  []string
	QualityKeywords []QualityKeywords
	DefaultLocation string
	DefaultTask     model.TaskType
	DefaultSize     float64
	MinSize         float64
	MaxSize         float64
}

// DefaultConfig returns the standard keyword tables.
func DefaultConfig() Config {
	return Config{
		TaskKeywords: map[model.TaskType][]string{
			model.TaskTiles:      {"tiles", "tile", "ceramic", "porcelain"},
			model.TaskPlumbing:   {"plumbing", "shower", "bath", "sink", "toilet"},
			model.TaskPainting:   {"paint", "repaint", "wall"},
			model.TaskFlooring:   {"floor", "flooring", "laying"},
			model.TaskVanity:     {"vanity", "cabinet", "storage"},
			model.TaskElectrical: {"electrical", "lighting", "outlet", "switch"},
		},
		Locations: []string{
			"marseille", "paris", "nice", "lyon",
			"toulouse", "nantes", "strasbourg", "montpellier",
		},
		BudgetKeywords: []string{"budget", "cheap", "affordable", "economy"},
		QualityKeywords: []QualityKeywords{
			{Quality: model.QualityLuxury, Keywords: []string{"luxury", "high-end"}},
			{Quality: model.QualityPremium, Keywords: []string{"premium"}},
			{Quality: model.QualityBasic, Keywords: []string{"basic", "entry-level"}},
		},
		DefaultLocation: "marseille",
		DefaultTask:     model.TaskPainting,
		DefaultSize:     4.0,
		MinSize:         1,
		MaxSize:         50,
	}
}

// Extractor parses renovation descriptions. It is safe for concurrent use;
// only the location list can change after construction.
type Extractor struct {
	logger *slog.Logger
	config Config
	mu     sync.RWMutex
}

// New creates an extractor with the default keyword tables.
func New(logger *slog.Logger) *Extractor {
	return NewWithConfig(DefaultConfig(), logger)
}

// NewWithConfig creates an extractor with custom keyword tables.
func NewWithConfig(config Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{config: config, logger: logger}
}

// Extract parses text into a requirement record. It fails with a
// ValidationError when the text is empty or too short.
func (e *Extractor) Extract(text string) (model.RequirementRecord, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return model.RequirementRecord{}, common.NewValidationError("text", "is required")
	}
	length := utf8.RuneCountInString(trimmed)
	if length < MinTextLength {
		return model.RequirementRecord{}, common.NewValidationError("text",
			"must be at least "+strconv.Itoa(MinTextLength)+" characters")
	}
	if length > RecommendedMaxTextLength {
		e.logger.Debug("description exceeds recommended length",
			"length", length,
			"recommended", RecommendedMaxTextLength)
	}

	lower := strings.ToLower(trimmed)

	req := model.RequirementRecord{
		OriginalText:    text,
		Size:            e.size(lower),
		Location:        e.location(lower),
		Tasks:           e.tasks(lower),
		Quality:         e.quality(lower),
		BudgetConscious: containsAny(lower, e.config.BudgetKeywords),
	}

	e.logger.Debug("extracted requirement",
		"size", req.Size,
		"location", req.Location,
		"tasks", len(req.Tasks),
		"budget_conscious", req.BudgetConscious)

	return req, nil
}

func (e *Extractor) size(lower string) float64 {
	m := sizePattern.FindStringSubmatch(lower)
	if m == nil {
		return e.config.DefaultSize
	}

	size, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return e.config.DefaultSize
	}

	if size < e.config.MinSize || size > e.config.MaxSize {
		e.logger.Warn("bathroom size outside expected range",
			"size", size,
			"min", e.config.MinSize,
			"max", e.config.MaxSize)
	}
	return size
}

// AddLocations makes new location names recognisable. Names are matched in
// lower case and appended after the existing ones in sorted order, so
// earlier locations keep their precedence.
func (e *Extractor) AddLocations(names ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var added []string
	for _, name := range names {
		loc := strings.ToLower(strings.TrimSpace(name))
		if loc == "" || slices.Contains(e.config.Locations, loc) || slices.Contains(added, loc) {
			continue
		}
		added = append(added, loc)
	}
	slices.Sort(added)
	e.config.Locations = append(slices.Clip(e.config.Locations), added...)
}

func (e *Extractor) location(lower string) string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, loc := range e.config.Locations {
		if strings.Contains(lower, loc) {
			return loc
		}
	}
	return e.config.DefaultLocation
}

func (e *Extractor) tasks(lower string) []model.TaskType {
	var tasks []model.TaskType
	for _, task := range model.AllTasks() {
		if containsAny(lower, e.config.TaskKeywords[task]) {
			tasks = append(tasks, task)
		}
	}
	if len(tasks) == 0 {
		return []model.TaskType{e.config.DefaultTask}
	}
	return tasks
}

func (e *Extractor) quality(lower string) model.Quality {
	for _, q := range e.config.QualityKeywords {
		if containsAny(lower, q.Keywords) {
			return q.Quality
		}
	}
	return model.QualityStandard
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
