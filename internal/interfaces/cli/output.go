package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// tableProvider is implemented by results that render as a table.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult outputs data in the format selected by --output.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	format := OutputText
	if cliCtx, err := GetCLIContext(cmd); err == nil {
		format = cliCtx.OutputFormat
	}

	switch format {
	case OutputJSON:
		return printJSON(cmd, data)
	case OutputTable:
		return printTable(cmd, data)
	default:
		return printText(cmd, data)
	}
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(cmd *cobra.Command, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprint(cmd.OutOrStdout(), v.String())
	default:
		return printJSON(cmd, data)
	}
	return nil
}

func printTable(cmd *cobra.Command, data interface{}) error {
	if tp, ok := data.(tableProvider); ok {
		fmt.Fprint(cmd.OutOrStdout(), FormatTable(tp.TableHeaders(), tp.TableRows()))
		return nil
	}
	return printText(cmd, data)
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// FormatTable renders headers and rows as an aligned ASCII table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if len(row[i]) > colWidths[i] {
				colWidths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			if i == len(headers)-1 {
				sb.WriteString(val)
			} else {
				sb.WriteString(padRight(val, colWidths[i]))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sep := make([]string, len(headers))
	for i, w := range colWidths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// truncate shortens s to n runes for table cells.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func confidence(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// ─────────────────────────────────────────────────────────────────────────────
// Views
// ─────────────────────────────────────────────────────────────────────────────

type reportView struct {
	r *legal.AnalysisReport
}

func (v reportView) MarshalJSON() ([]byte, error) { return json.Marshal(v.r) }

func (v reportView) String() string {
	r := v.r
	var sb strings.Builder
	fmt.Fprintf(&sb, "Document: %s\n", r.Filename)
	fmt.Fprintf(&sb, "Type:     %s (%s)\n", r.DocumentType.Type, confidence(r.DocumentType.Confidence))
	if r.Sentiment != "" {
		fmt.Fprintf(&sb, "Tone:     %s\n", r.Sentiment)
	}
	fmt.Fprintf(&sb, "\nSummary:\n  %s\n", r.Summary)
	fmt.Fprintf(&sb, "\nClauses (%d):\n", len(r.Clauses))
	for _, c := range r.Clauses {
		fmt.Fprintf(&sb, "  %d. [%s] %s\n", c.Clause.Index, c.Clause.Type, c.Simplified)
	}
	fmt.Fprintf(&sb, "\nEntities (%d):\n", len(r.Entities))
	for _, e := range r.Entities {
		fmt.Fprintf(&sb, "  %-16s %s\n", e.Kind, e.Text)
	}
	s := r.Stats
	fmt.Fprintf(&sb, "\nStats: %d words, %d sentences, %d paragraphs, ~%d min read\n",
		s.WordCount, s.SentenceCount, s.ParagraphCount, s.ReadingTimeMinutes)
	return sb.String()
}

func (v reportView) TableHeaders() []string { return []string{"FIELD", "VALUE"} }

func (v reportView) TableRows() [][]string {
	r := v.r
	return [][]string{
		{"document", r.Filename},
		{"type", string(r.DocumentType.Type)},
		{"confidence", confidence(r.DocumentType.Confidence)},
		{"summary", truncate(r.Summary, 80)},
		{"clauses", strconv.Itoa(len(r.Clauses))},
		{"entities", strconv.Itoa(len(r.Entities))},
		{"words", strconv.Itoa(r.Stats.WordCount)},
		{"warnings", strconv.Itoa(len(r.Warnings))},
	}
}

type clauseList []legal.Clause

func (l clauseList) String() string {
	var sb strings.Builder
	for _, c := range l {
		fmt.Fprintf(&sb, "%d. [%s] %s\n", c.Index, c.Type, c.Text)
	}
	return sb.String()
}

func (l clauseList) TableHeaders() []string { return []string{"#", "TYPE", "TEXT"} }

func (l clauseList) TableRows() [][]string {
	rows := make([][]string, len(l))
	for i, c := range l {
		rows[i] = []string{strconv.Itoa(c.Index), string(c.Type), truncate(c.Text, 70)}
	}
	return rows
}

type clauseAnalysisList []legal.ClauseAnalysis

func (l clauseAnalysisList) String() string {
	var sb strings.Builder
	for _, c := range l {
		fmt.Fprintf(&sb, "%d. [%s] %s\n", c.Clause.Index, c.Clause.Type, c.Simplified)
		for _, p := range c.KeyPoints {
			fmt.Fprintf(&sb, "   - %s\n", p)
		}
	}
	return sb.String()
}

func (l clauseAnalysisList) TableHeaders() []string { return []string{"#", "TYPE", "SIMPLIFIED"} }

func (l clauseAnalysisList) TableRows() [][]string {
	rows := make([][]string, len(l))
	for i, c := range l {
		rows[i] = []string{strconv.Itoa(c.Clause.Index), string(c.Clause.Type), truncate(c.Simplified, 70)}
	}
	return rows
}

type entityList []legal.Entity

func (l entityList) String() string {
	var sb strings.Builder
	for _, e := range l {
		fmt.Fprintf(&sb, "%-16s %s (%s)\n", e.Kind, e.Text, confidence(e.Confidence))
	}
	return sb.String()
}

func (l entityList) TableHeaders() []string { return []string{"TYPE", "CONFIDENCE", "TEXT"} }

func (l entityList) TableRows() [][]string {
	rows := make([][]string, len(l))
	for i, e := range l {
		rows[i] = []string{string(e.Kind), confidence(e.Confidence), e.Text}
	}
	return rows
}

type classificationView legal.Classification

func (c classificationView) String() string {
	return fmt.Sprintf("%s (%s)\n", c.Type, confidence(c.Confidence))
}

func (c classificationView) TableHeaders() []string { return []string{"TYPE", "CONFIDENCE"} }

func (c classificationView) TableRows() [][]string {
	return [][]string{{string(c.Type), confidence(c.Confidence)}}
}

type clauseTypeView struct {
	ClauseType legal.ClauseType `json:"clause_type"`
}

func (c clauseTypeView) String() string { return string(c.ClauseType) + "\n" }

type statsView legal.DocumentStats

func (s statsView) String() string {
	return fmt.Sprintf("words: %d\nsentences: %d\nparagraphs: %d\ncharacters: %d\nreading time: %d min\n",
		s.WordCount, s.SentenceCount, s.ParagraphCount, s.CharacterCount, s.ReadingTimeMinutes)
}

func (s statsView) TableHeaders() []string { return []string{"METRIC", "VALUE"} }

func (s statsView) TableRows() [][]string {
	return [][]string{
		{"words", strconv.Itoa(s.WordCount)},
		{"sentences", strconv.Itoa(s.SentenceCount)},
		{"paragraphs", strconv.Itoa(s.ParagraphCount)},
		{"characters", strconv.Itoa(s.CharacterCount)},
		{"reading_time_minutes", strconv.Itoa(s.ReadingTimeMinutes)},
	}
}

// textView is a single labelled paragraph: a summary or a rewrite.
type textView struct {
	Label string
	Text  string
}

func (t textView) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{t.Label: t.Text})
}

func (t textView) String() string { return t.Text + "\n" }

//Personal.AI order the ending
