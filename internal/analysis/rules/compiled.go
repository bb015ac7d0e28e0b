package rules

import (
	"regexp"
	"sort"
	"strings"

	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// CompiledPattern is an EntityPattern with its regular expression built.
type CompiledPattern struct {
	Kind       legal.EntityKind
	Regexp     *regexp.Regexp
	Confidence float64
}

// Compiled is the read-only, ready-to-use form of Tables. It is safe for
// concurrent use by any number of components.
type Compiled struct {
	tables *Tables

	markers        []string
	numbered       []*regexp.Regexp
	sentenceEnd    *regexp.Regexp
	whitespace     *regexp.Regexp
	clauseRules    []ClauseRule
	documentRules  []DocumentRule
	replacements   []Replacement
	entityPatterns []CompiledPattern
	insight        InsightRules
}

// Compile validates t and builds every regular expression. Keywords and
// insight match terms are lower-cased, markers upper-cased, and replacements ordered longest phrase
// first so that multi-word phrases shadow the shorter ones they contain.
func (t *Tables) Compile() (*Compiled, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	c := &Compiled{
		tables:      t,
		sentenceEnd: regexp.MustCompile(`[.!?]+`),
		whitespace:  regexp.MustCompile(`\s+`),
	}

	for _, m := range t.Segmentation.Markers {
		if m = strings.TrimSpace(m); m != "" {
			c.markers = append(c.markers, strings.ToUpper(m))
		}
	}
	for _, p := range t.Segmentation.NumberedPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodeRulesInvalid, "numbered pattern %q", p)
		}
		c.numbered = append(c.numbered, re)
	}

	for _, r := range t.ClauseRules {
		c.clauseRules = append(c.clauseRules, ClauseRule{Type: r.Type, Keywords: lowerAll(r.Keywords)})
	}
	for _, r := range t.Documents.Rules {
		c.documentRules = append(c.documentRules, DocumentRule{Type: r.Type, Keywords: lowerAll(r.Keywords)})
	}

	for _, r := range t.Simplification.Replacements {
		c.replacements = append(c.replacements, Replacement{Phrase: strings.ToLower(r.Phrase), Plain: r.Plain})
	}
	sort.SliceStable(c.replacements, func(i, j int) bool {
		return len(c.replacements[i].Phrase) > len(c.replacements[j].Phrase)
	})

	c.insight = t.Insight
	c.insight.SummaryKeywords = lowerAll(t.Insight.SummaryKeywords)
	c.insight.PositiveTerms = lowerAll(t.Insight.PositiveTerms)
	c.insight.NegativeTerms = lowerAll(t.Insight.NegativeTerms)
	c.insight.KeyPhraseTerms = lowerAll(t.Insight.KeyPhraseTerms)
	c.insight.KeyPoints = make([]KeyPoint, 0, len(t.Insight.KeyPoints))
	for _, kp := range t.Insight.KeyPoints {
		if term := strings.ToLower(strings.TrimSpace(kp.Term)); term != "" {
			c.insight.KeyPoints = append(c.insight.KeyPoints, KeyPoint{Term: term, Point: kp.Point})
		}
	}

	for _, p := range t.Entities.Patterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodeRulesInvalid, "entity pattern for %s", p.Kind)
		}
		c.entityPatterns = append(c.entityPatterns, CompiledPattern{Kind: p.Kind, Regexp: re, Confidence: p.Confidence})
	}
	return c, nil
}

// MustDefault compiles the built-in tables. The defaults always compile.
func MustDefault() *Compiled {
	c, err := Default().Compile()
	if err != nil {
		panic(err)
	}
	return c
}

// Tables returns the source tables. Callers must not modify them.
func (c *Compiled) Tables() *Tables { return c.tables }

// Markers returns upper-cased section markers.
func (c *Compiled) Markers() []string { return c.markers }

// NumberedPatterns returns the list-item patterns.
func (c *Compiled) NumberedPatterns() []*regexp.Regexp { return c.numbered }

// SentenceEnd matches runs of sentence terminators.
func (c *Compiled) SentenceEnd() *regexp.Regexp { return c.sentenceEnd }

// Whitespace matches runs of whitespace.
func (c *Compiled) Whitespace() *regexp.Regexp { return c.whitespace }

// ClauseRules returns the ordered clause rules with lower-cased keywords.
func (c *Compiled) ClauseRules() []ClauseRule { return c.clauseRules }

// DocumentRules returns the document rules with lower-cased keywords.
func (c *Compiled) DocumentRules() []DocumentRule { return c.documentRules }

// Replacements returns the jargon table, longest phrase first.
func (c *Compiled) Replacements() []Replacement { return c.replacements }

// Insight returns the insight tables with lower-cased match terms.
func (c *Compiled) Insight() InsightRules { return c.insight }

// EntityPatterns returns the compiled entity patterns in table order.
func (c *Compiled) EntityPatterns() []CompiledPattern { return c.entityPatterns }

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

//Personal.AI order the ending
