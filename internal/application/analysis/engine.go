package analysis

import (
	"github.com/turtacn/ClauseWise/internal/analysis/classifier"
	"github.com/turtacn/ClauseWise/internal/analysis/extractor"
	"github.com/turtacn/ClauseWise/internal/analysis/insight"
	"github.com/turtacn/ClauseWise/internal/analysis/rewriter"
	"github.com/turtacn/ClauseWise/internal/analysis/rules"
	"github.com/turtacn/ClauseWise/internal/analysis/segmenter"
)

// Engine bundles the local rule-based components built from one rule set.
// It is immutable and safe for concurrent use.
type Engine struct {
	Rules     *rules.Compiled
	Segmenter *segmenter.Segmenter
	Clauses   *classifier.ClauseClassifier
	Documents *classifier.DocumentClassifier
	Rewriter  *rewriter.Rewriter
	Extractor *extractor.Extractor
	Insight   *insight.Analyzer
}

// NewEngine wires every local component over r.
func NewEngine(r *rules.Compiled) *Engine {
	clauses := classifier.NewClauseClassifier(r)
	return &Engine{
		Rules:     r,
		Segmenter: segmenter.New(r, segmenter.WithLabeler(clauses.Classify)),
		Clauses:   clauses,
		Documents: classifier.NewDocumentClassifier(r),
		Rewriter:  rewriter.New(r),
		Extractor: extractor.New(r),
		Insight:   insight.New(r),
	}
}

// DefaultEngine is an Engine over the built-in tables.
func DefaultEngine() *Engine {
	return NewEngine(rules.MustDefault())
}

// BuildEngine loads the rule tables at rulesPath (built-ins when empty),
// applies a positive summarySentences override and compiles them.
func BuildEngine(rulesPath string, summarySentences int) (*Engine, error) {
	tables, err := rules.Load(rulesPath)
	if err != nil {
		return nil, err
	}
	if summarySentences > 0 {
		tables.Insight.SummarySentences = summarySentences
	}
	compiled, err := tables.Compile()
	if err != nil {
		return nil, err
	}
	return NewEngine(compiled), nil
}

//Personal.AI order the ending
