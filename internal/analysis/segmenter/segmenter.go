// Package segmenter splits flat document text into an ordered sequence of
// clauses using section markers, list numbering, all-caps headings and a
// length cap.
package segmenter

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/turtacn/ClauseWise/internal/analysis/rules"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// Labeler assigns a clause type to clause text.
type Labeler func(text string) legal.ClauseType

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithLabeler sets the function used to fill Clause.Type. Without it every
// clause is labelled General.
func WithLabeler(l Labeler) Option {
	return func(s *Segmenter) {
		if l != nil {
			s.label = l
		}
	}
}

// Segmenter is stateless apart from its compiled rules.
type Segmenter struct {
	rules *rules.Compiled
	label Labeler
}

// New creates a Segmenter over the given rules.
func New(r *rules.Compiled, opts ...Option) *Segmenter {
	s := &Segmenter{
		rules: r,
		label: func(string) legal.ClauseType { return legal.ClauseGeneral },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Segment splits text and returns 1-based, labelled clauses in document order.
func (s *Segmenter) Segment(text string, maxLength int) []legal.Clause {
	spans := s.Split(text, maxLength)
	out := make([]legal.Clause, 0, len(spans))
	for i, span := range spans {
		out = append(out, legal.Clause{Index: i + 1, Text: span, Type: s.label(span)})
	}
	return out
}

// Split returns the clause texts of text in source order. A non-positive
// maxLength uses the table default. Every returned span is whitespace
// normalized and longer than the minimum clause length.
func (s *Segmenter) Split(text string, maxLength int) []string {
	seg := s.rules.Tables().Segmentation
	if maxLength <= 0 {
		maxLength = seg.DefaultMaxLength
	}

	var (
		raw []string
		buf string
	)
	emit := func(span string) {
		raw = append(raw, strings.TrimSpace(span))
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case buf != "" && s.isBoundary(line):
			emit(buf)
			buf = line
		case buf == "":
			buf = line
		default:
			buf += " " + line
		}

		if utf8.RuneCountInString(buf) > maxLength {
			buf = s.splitLong(buf, emit)
		}
	}
	if strings.TrimSpace(buf) != "" {
		emit(buf)
	}

	out := make([]string, 0, len(raw))
	for _, span := range raw {
		span = strings.TrimSpace(s.rules.Whitespace().ReplaceAllString(span, " "))
		if utf8.RuneCountInString(span) <= seg.MinClauseLength {
			continue
		}
		out = append(out, span)
	}
	return out
}

// splitLong emits the first half of buf's sentences and returns the rest.
// Without a sentence boundary the whole buffer is emitted.
func (s *Segmenter) splitLong(buf string, emit func(string)) string {
	parts := s.rules.SentenceEnd().Split(buf, -1)
	if len(parts) < 2 {
		emit(buf)
		return ""
	}
	mid := len(parts) / 2
	emit(strings.Join(parts[:mid], ". ") + ".")
	return strings.Join(parts[mid:], ". ")
}

func (s *Segmenter) isBoundary(line string) bool {
	upper := strings.ToUpper(line)
	for _, m := range s.rules.Markers() {
		if strings.HasPrefix(upper, m) {
			return true
		}
	}
	for _, re := range s.rules.NumberedPatterns() {
		if re.MatchString(line) {
			return true
		}
	}
	return utf8.RuneCountInString(line) < s.rules.Tables().Segmentation.HeadingMaxLength && isAllCaps(line)
}

// isAllCaps reports whether line has at least one cased letter and no lower-case ones.
func isAllCaps(line string) bool {
	cased := false
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

//Personal.AI order the ending
