// Package rules holds the keyword, phrase and pattern tables that drive every
// local heuristic in ClauseWise. Tables are plain data: they are loaded once at
// startup (built-in defaults, optionally overlaid by a YAML file), compiled,
// and handed to each analysis component through its constructor.
package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// ─────────────────────────────────────────────────────────────────────────────
// Table sections
// ─────────────────────────────────────────────────────────────────────────────

// SegmentationRules drive clause boundary detection.
type SegmentationRules struct {
	// Markers are compared against the upper-cased line prefix.
	Markers []string `yaml:"markers"`
	// NumberedPatterns are anchored regular expressions for list items.
	NumberedPatterns []string `yaml:"numbered_patterns"`
	// HeadingMaxLength bounds the all-caps heading heuristic (exclusive).
	HeadingMaxLength int `yaml:"heading_max_length"`
	// MinClauseLength is the exclusive lower bound on kept clause length.
	MinClauseLength int `yaml:"min_clause_length"`
	// DefaultMaxLength applies when a caller passes a non-positive max length.
	DefaultMaxLength int `yaml:"default_max_length"`
}

// ClauseRule maps keyword presence to a clause label. Rules are evaluated in order.
type ClauseRule struct {
	Type     legal.ClauseType `yaml:"type"`
	Keywords []string         `yaml:"keywords"`
}

// DocumentRule is one candidate document type and its keyword set.
type DocumentRule struct {
	Type     legal.DocumentType `yaml:"type"`
	Keywords []string           `yaml:"keywords"`
}

// DocumentScoring controls document classification confidence.
type DocumentScoring struct {
	Rules []DocumentRule `yaml:"rules"`
	// Normalization divides the raw score; confidence saturates at 1.
	Normalization float64 `yaml:"normalization"`
	// FallbackConfidence is reported when no keyword matches.
	FallbackConfidence float64 `yaml:"fallback_confidence"`
}

// Replacement is one jargon phrase and its plain-English form.
type Replacement struct {
	Phrase string `yaml:"phrase"`
	Plain  string `yaml:"plain"`
}

// GlossaryEntry explains one complex term in the document appendix.
type GlossaryEntry struct {
	Term        string `yaml:"term"`
	Explanation string `yaml:"explanation"`
}

// Theme emits a summary bullet when any trigger is present.
type Theme struct {
	Triggers []string `yaml:"triggers"`
	Bullet   string   `yaml:"bullet"`
}

// SimplificationRules drive the term rewriter.
type SimplificationRules struct {
	Replacements       []Replacement   `yaml:"replacements"`
	Connectors         []string        `yaml:"connectors"`
	LongSentenceLength int             `yaml:"long_sentence_length"`
	Glossary           []GlossaryEntry `yaml:"glossary"`
	GlossaryHeading    string          `yaml:"glossary_heading"`
	SummaryHeading     string          `yaml:"summary_heading"`
	Themes             []Theme         `yaml:"themes"`
	FallbackTheme      string          `yaml:"fallback_theme"`
}

// EntityPattern is a regular expression emitting one entity per match.
type EntityPattern struct {
	Kind       legal.EntityKind `yaml:"kind"`
	Pattern    string           `yaml:"pattern"`
	Confidence float64          `yaml:"confidence"`
}

// EntityRules drive the entity extractor.
type EntityRules struct {
	Patterns             []EntityPattern `yaml:"patterns"`
	LegalTerms           []string        `yaml:"legal_terms"`
	LegalTermConfidence  float64         `yaml:"legal_term_confidence"`
	Obligations          []string        `yaml:"obligations"`
	ObligationConfidence float64         `yaml:"obligation_confidence"`
}

// KeyPoint explains a clause when Term is present in it.
type KeyPoint struct {
	Term  string `yaml:"term"`
	Point string `yaml:"point"`
}

// InsightRules drive summaries, key points and the document statistics helpers.
type InsightRules struct {
	SummaryKeywords  []string   `yaml:"summary_keywords"`
	SummarySentences int        `yaml:"summary_sentences"`
	KeyPoints        []KeyPoint `yaml:"key_points"`
	DefaultKeyPoint  string     `yaml:"default_key_point"`
	PositiveTerms    []string   `yaml:"positive_terms"`
	NegativeTerms    []string   `yaml:"negative_terms"`
	KeyPhraseTerms   []string   `yaml:"key_phrase_terms"`
	KeyPhraseLimit   int        `yaml:"key_phrase_limit"`
	WordsPerMinute   int        `yaml:"words_per_minute"`
	KeyElements      []string   `yaml:"key_elements"`
	Conditions       []string   `yaml:"conditions"`
	Exceptions       []string   `yaml:"exceptions"`
}

// Tables is the full rule set.
type Tables struct {
	Segmentation   SegmentationRules   `yaml:"segmentation"`
	ClauseRules    []ClauseRule        `yaml:"clause_rules"`
	Documents      DocumentScoring     `yaml:"documents"`
	Simplification SimplificationRules `yaml:"simplification"`
	Entities       EntityRules         `yaml:"entities"`
	Insight        InsightRules        `yaml:"insight"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Loading
// ─────────────────────────────────────────────────────────────────────────────

// Load reads a YAML rules file and overlays it on the defaults. Sections
// absent from the file keep their default values; a list present in the file
// replaces the default list. An empty path returns the defaults.
func Load(path string) (*Tables, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeRulesInvalid, "read rules file %s", path)
	}
	return Parse(data)
}

// Parse overlays YAML bytes on the defaults and validates the result.
func Parse(data []byte) (*Tables, error) {
	t := Default()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRulesInvalid, "parse rules yaml")
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Marshal renders the tables as YAML.
func Marshal(t *Tables) ([]byte, error) {
	out, err := yaml.Marshal(t)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal rules")
	}
	return out, nil
}

// MaxFallbackConfidence caps the confidence of a document no rule scored.
const MaxFallbackConfidence = 0.3

// Validate checks labels and numeric bounds. Regular expressions are checked by Compile.
func (t *Tables) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return errors.New(errors.ErrCodeRulesInvalid, fmt.Sprintf(format, args...))
	}

	s := t.Segmentation
	if s.HeadingMaxLength < 1 {
		return invalid("segmentation.heading_max_length must be positive")
	}
	if s.MinClauseLength < 0 {
		return invalid("segmentation.min_clause_length must not be negative")
	}
	if s.DefaultMaxLength <= s.MinClauseLength {
		return invalid("segmentation.default_max_length must exceed min_clause_length")
	}

	for i, r := range t.ClauseRules {
		if !r.Type.IsValid() || r.Type == legal.ClauseGeneral {
			return invalid("clause_rules[%d]: unknown or reserved clause type %q", i, r.Type)
		}
		if len(r.Keywords) == 0 {
			return invalid("clause_rules[%d]: no keywords", i)
		}
	}

	for i, r := range t.Documents.Rules {
		if !r.Type.IsValid() {
			return invalid("documents.rules[%d]: unknown document type %q", i, r.Type)
		}
	}
	if t.Documents.Normalization <= 0 {
		return invalid("documents.normalization must be positive")
	}
	if c := t.Documents.FallbackConfidence; c < 0 || c > MaxFallbackConfidence {
		return invalid("documents.fallback_confidence must be within [0,%g]", MaxFallbackConfidence)
	}

	for i, r := range t.Simplification.Replacements {
		if r.Phrase == "" {
			return invalid("simplification.replacements[%d]: empty phrase", i)
		}
	}
	if t.Simplification.LongSentenceLength < 1 {
		return invalid("simplification.long_sentence_length must be positive")
	}

	for i, p := range t.Entities.Patterns {
		if p.Confidence < 0 || p.Confidence > 1 {
			return invalid("entities.patterns[%d]: confidence out of range", i)
		}
	}

	if t.Insight.SummarySentences < 1 {
		return invalid("insight.summary_sentences must be positive")
	}
	if t.Insight.WordsPerMinute < 1 {
		return invalid("insight.words_per_minute must be positive")
	}
	return nil
}

//Personal.AI order the ending
