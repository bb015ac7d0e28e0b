// Package extractor finds organizations, dates, monetary amounts, legal terms
// and obligation indicators in raw text.
package extractor

import (
	"strings"

	"github.com/turtacn/ClauseWise/internal/analysis/rules"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// Extractor applies every pattern family independently.
type Extractor struct {
	patterns []rules.CompiledPattern
	ent      rules.EntityRules
}

// New creates an Extractor.
func New(r *rules.Compiled) *Extractor {
	return &Extractor{
		patterns: r.EntityPatterns(),
		ent:      r.Tables().Entities,
	}
}

// Extract returns pattern matches in table order, then one LegalTerm entity
// per distinct vocabulary term present, then one Obligation entity per
// indicator present. Matches of different families may overlap and the same
// literal may appear more than once.
func (e *Extractor) Extract(text string) []legal.Entity {
	out := make([]legal.Entity, 0)
	if strings.TrimSpace(text) == "" {
		return out
	}

	for _, p := range e.patterns {
		for _, m := range p.Regexp.FindAllString(text, -1) {
			m = strings.TrimSpace(m)
			if m == "" {
				continue
			}
			out = append(out, legal.Entity{Text: m, Kind: p.Kind, Confidence: p.Confidence})
		}
	}

	lower := strings.ToLower(text)
	out = appendPresent(out, lower, e.ent.LegalTerms, legal.EntityLegalTerm, e.ent.LegalTermConfidence)
	out = appendPresent(out, lower, e.ent.Obligations, legal.EntityObligation, e.ent.ObligationConfidence)
	return out
}

// ByKind groups entities by kind, preserving order within each kind.
func ByKind(entities []legal.Entity) map[legal.EntityKind][]legal.Entity {
	out := make(map[legal.EntityKind][]legal.Entity)
	for _, e := range entities {
		out[e.Kind] = append(out[e.Kind], e)
	}
	return out
}

func appendPresent(out []legal.Entity, lower string, terms []string, kind legal.EntityKind, conf float64) []legal.Entity {
	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		t := strings.ToLower(term)
		if _, dup := seen[t]; dup || !strings.Contains(lower, t) {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, legal.Entity{Text: term, Kind: kind, Confidence: conf})
	}
	return out
}

//Personal.AI order the ending
