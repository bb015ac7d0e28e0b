// Package classifier labels clauses and whole documents by keyword presence.
package classifier

import (
	"strings"

	"github.com/turtacn/ClauseWise/internal/analysis/rules"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// ClauseClassifier applies the ordered clause rules; the first rule with any
// keyword present wins.
type ClauseClassifier struct {
	rules []rules.ClauseRule
}

// NewClauseClassifier creates a ClauseClassifier.
func NewClauseClassifier(r *rules.Compiled) *ClauseClassifier {
	return &ClauseClassifier{rules: r.ClauseRules()}
}

// Classify returns exactly one label; General when nothing matches.
func (c *ClauseClassifier) Classify(text string) legal.ClauseType {
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		if rules.ContainsAny(lower, r.Keywords) {
			return r.Type
		}
	}
	return legal.ClauseGeneral
}

// DocumentClassifier scores every document type by the number of its
// keywords present in the text.
type DocumentClassifier struct {
	rules         []rules.DocumentRule
	normalization float64
	fallback      float64
}

// NewDocumentClassifier creates a DocumentClassifier.
func NewDocumentClassifier(r *rules.Compiled) *DocumentClassifier {
	docs := r.Tables().Documents
	return &DocumentClassifier{
		rules:         r.DocumentRules(),
		normalization: docs.Normalization,
		fallback:      docs.FallbackConfidence,
	}
}

// Classify returns the highest scoring type; ties go to the earlier rule.
// With no keyword present it returns General Contract at the fallback confidence.
func (d *DocumentClassifier) Classify(text string) legal.Classification {
	scores := d.Scores(text)

	best, bestScore := legal.DocumentGeneral, 0
	for _, r := range d.rules {
		if s := scores[r.Type]; s > bestScore {
			best, bestScore = r.Type, s
		}
	}
	if bestScore == 0 {
		return legal.NewClassification(legal.DocumentGeneral, d.fallback)
	}
	return legal.NewClassification(best, float64(bestScore)/d.normalization)
}

// Scores returns the raw keyword count for every configured type.
func (d *DocumentClassifier) Scores(text string) map[legal.DocumentType]int {
	lower := strings.ToLower(text)
	out := make(map[legal.DocumentType]int, len(d.rules))
	for _, r := range d.rules {
		n := 0
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				n++
			}
		}
		out[r.Type] += n
	}
	return out
}

//Personal.AI order the ending
