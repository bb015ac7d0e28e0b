// Package insight derives document-level views from raw text: an extractive
// summary, clause key points, statistics, tone, key phrases and clause
// structure markers.
package insight

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/turtacn/ClauseWise/internal/analysis/classifier"
	"github.com/turtacn/ClauseWise/internal/analysis/rules"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// Analyzer computes insights. It holds only compiled rules.
type Analyzer struct {
	cfg     rules.InsightRules
	clauses *classifier.ClauseClassifier
}

// New creates an Analyzer.
func New(r *rules.Compiled) *Analyzer {
	return &Analyzer{
		cfg:     r.Insight(),
		clauses: classifier.NewClauseClassifier(r),
	}
}

type scored struct {
	text  string
	score int
}

// Summarize picks the highest scoring sentences. Each summary keyword present
// adds 2, and a sentence of 21 to 99 characters adds 1. Sentences are ranked
// by score only; equal scores keep document order. The result is the chosen
// sentences joined with ". " plus a final ".", or "" for blank input.
func (a *Analyzer) Summarize(text string) string {
	var ranked []scored
	for _, s := range strings.Split(text, ".") {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			continue
		}
		score := 0
		lower := strings.ToLower(s)
		for _, kw := range a.cfg.SummaryKeywords {
			if strings.Contains(lower, kw) {
				score += 2
			}
		}
		if n := utf8.RuneCountInString(s); n > 20 && n < 100 {
			score++
		}
		ranked = append(ranked, scored{text: trimmed, score: score})
	}
	if len(ranked) == 0 {
		return ""
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > a.cfg.SummarySentences {
		ranked = ranked[:a.cfg.SummarySentences]
	}
	top := make([]string, len(ranked))
	for i, r := range ranked {
		top[i] = r.text
	}
	return strings.Join(top, ". ") + "."
}

// KeyPoints explains a clause: one point per configured term present, in
// table order, or the default point when none is present.
func (a *Analyzer) KeyPoints(clause string) []string {
	lower := strings.ToLower(clause)
	var out []string
	for _, kp := range a.cfg.KeyPoints {
		if strings.Contains(lower, kp.Term) {
			out = append(out, kp.Point)
		}
	}
	if len(out) == 0 {
		out = append(out, a.cfg.DefaultKeyPoint)
	}
	return out
}

// Stats counts words, sentences, paragraphs and characters.
func (a *Analyzer) Stats(text string) legal.DocumentStats {
	words := len(strings.Fields(text))
	return legal.DocumentStats{
		WordCount:          words,
		SentenceCount:      countNonBlank(strings.Split(text, ".")),
		ParagraphCount:     countNonBlank(strings.Split(text, "\n\n")),
		CharacterCount:     utf8.RuneCountInString(text),
		ReadingTimeMinutes: words / a.cfg.WordsPerMinute,
	}
}

// Sentiment compares how many distinct positive and negative terms occur.
func (a *Analyzer) Sentiment(text string) legal.Sentiment {
	lower := strings.ToLower(text)
	pos, neg := countPresent(lower, a.cfg.PositiveTerms), countPresent(lower, a.cfg.NegativeTerms)
	switch {
	case pos > neg:
		return legal.SentimentPositive
	case neg > pos:
		return legal.SentimentNegative
	default:
		return legal.SentimentNeutral
	}
}

// KeyPhrases returns trimmed sentences that contain an obligation or risk
// term, in document order, capped by the configured limit.
func (a *Analyzer) KeyPhrases(text string) []string {
	out := make([]string, 0)
	for _, s := range strings.Split(text, ".") {
		s = strings.TrimSpace(s)
		if s == "" || !rules.ContainsAny(strings.ToLower(s), a.cfg.KeyPhraseTerms) {
			continue
		}
		out = append(out, s)
		if len(out) == a.cfg.KeyPhraseLimit {
			break
		}
	}
	return out
}

// ClauseStructure labels the clause and lists the structural phrases it
// contains. Phrases match as whole words.
func (a *Analyzer) ClauseStructure(clause string) legal.ClauseStructure {
	return legal.ClauseStructure{
		ClauseType:  a.clauses.Classify(clause),
		KeyElements: presentWords(clause, a.cfg.KeyElements),
		Conditions:  presentWords(clause, a.cfg.Conditions),
		Exceptions:  presentWords(clause, a.cfg.Exceptions),
	}
}

func presentWords(text string, phrases []string) []string {
	out := make([]string, 0)
	for _, p := range phrases {
		if rules.ContainsWord(text, p) {
			out = append(out, p)
		}
	}
	return out
}

func countPresent(lower string, terms []string) int {
	n := 0
	for _, t := range terms {
		if strings.Contains(lower, t) {
			n++
		}
	}
	return n
}

func countNonBlank(parts []string) int {
	n := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}

//Personal.AI order the ending
