// Package rewriter turns legal phrasing into plain language by phrase
// substitution and long-sentence decomposition. It is a pure function of its
// input and the rule tables.
package rewriter

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/turtacn/ClauseWise/internal/analysis/rules"
)

// Rewriter simplifies clause and document text.
type Rewriter struct {
	replacements []rules.Replacement
	simp         rules.SimplificationRules
}

// New creates a Rewriter.
func New(r *rules.Compiled) *Rewriter {
	return &Rewriter{
		replacements: r.Replacements(),
		simp:         r.Tables().Simplification,
	}
}

// Simplify substitutes jargon and splits long sentences. The result is empty
// only when text is empty.
func (w *Rewriter) Simplify(text string) string {
	return w.decompose(w.Substitute(text))
}

// SimplifyDocument is Simplify followed by the glossary and summary appendix.
// Calling it on its own output appends a second appendix.
func (w *Rewriter) SimplifyDocument(text string) string {
	if text == "" {
		return ""
	}
	out := w.Simplify(text)

	lower := strings.ToLower(out)
	var explained []string
	for _, g := range w.simp.Glossary {
		if strings.Contains(lower, strings.ToLower(g.Term)) {
			explained = append(explained, g.Explanation)
		}
	}

	var b strings.Builder
	b.WriteString(out)
	if len(explained) > 0 {
		b.WriteString("\n\n")
		b.WriteString(w.simp.GlossaryHeading)
		b.WriteString(strings.Join(explained, "; "))
	}
	b.WriteString("\n\n")
	b.WriteString(w.simp.SummaryHeading)
	b.WriteString("\n")

	lower = strings.ToLower(b.String())
	var bullets []string
	for _, th := range w.simp.Themes {
		for _, trig := range th.Triggers {
			if strings.Contains(lower, strings.ToLower(trig)) {
				bullets = append(bullets, th.Bullet)
				break
			}
		}
	}
	if len(bullets) == 0 {
		bullets = append(bullets, w.simp.FallbackTheme)
	}
	b.WriteString(strings.Join(bullets, "\n"))
	return b.String()
}

// Substitute replaces every whole-word occurrence of each jargon phrase,
// longest phrase first, ignoring case. A capitalized occurrence yields a
// capitalized replacement and an all-caps occurrence an all-caps one.
func (w *Rewriter) Substitute(text string) string {
	for _, r := range w.replacements {
		text = replacePhrase(text, r)
	}
	return text
}

// decompose splits on '.', breaks long sentences at the first connector
// present, and rejoins with ". ".
func (w *Rewriter) decompose(text string) string {
	sentences := strings.Split(text, ".")
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if utf8.RuneCountInString(s) <= w.simp.LongSentenceLength {
			out = append(out, s)
			continue
		}
		split := false
		for _, conn := range w.simp.Connectors {
			if strings.Contains(s, conn) {
				out = append(out, strings.Split(s, conn)...)
				split = true
				break
			}
		}
		if !split {
			out = append(out, s)
		}
	}
	return strings.Join(out, ". ")
}

func replacePhrase(s string, r rules.Replacement) string {
	n := len(r.Phrase)
	from := rules.IndexWord(s, r.Phrase, 0)
	if from < 0 {
		return s
	}

	var b strings.Builder
	last := 0
	for from >= 0 {
		b.WriteString(s[last:from])
		b.WriteString(matchCase(s[from:from+n], r.Plain))
		last = from + n
		from = rules.IndexWord(s, r.Phrase, last)
	}
	b.WriteString(s[last:])
	return b.String()
}

func matchCase(occurrence, plain string) string {
	letters, upper := 0, 0
	for _, r := range occurrence {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	switch {
	case letters > 1 && upper == letters:
		return strings.ToUpper(plain)
	case letters > 0 && startsUpper(occurrence):
		return capitalize(plain)
	default:
		return plain
	}
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

//Personal.AI order the ending
