package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

func TestDefault_Compiles(t *testing.T) {
	c, err := Default().Compile()
	require.NoError(t, err)

	assert.Len(t, c.ClauseRules(), 7)
	assert.Len(t, c.DocumentRules(), 6)
	assert.Len(t, c.Replacements(), 50)
	assert.Len(t, c.NumberedPatterns(), 5)
	assert.Len(t, c.EntityPatterns(), 3)
	assert.Len(t, c.Tables().Entities.LegalTerms, 20)
	assert.Len(t, c.Tables().Insight.KeyPoints, 10)
	assert.Contains(t, c.Markers(), "WHEREAS")
	assert.Contains(t, c.Markers(), "IN WITNESS WHEREOF")
}

func TestDefault_ReturnsIndependentCopies(t *testing.T) {
	a := Default()
	a.ClauseRules[0].Keywords[0] = "changed"
	b := Default()
	assert.Equal(t, "confidential", b.ClauseRules[0].Keywords[0])
}

func TestCompile_ClauseRulePriorityOrder(t *testing.T) {
	c := MustDefault()
	var got []legal.ClauseType
	for _, r := range c.ClauseRules() {
		got = append(got, r.Type)
	}
	assert.Equal(t, legal.AllClauseTypes()[:7], got)
}

func TestCompile_ReplacementsLongestFirst(t *testing.T) {
	c := MustDefault()
	reps := c.Replacements()
	for i := 1; i < len(reps); i++ {
		assert.GreaterOrEqual(t, len(reps[i-1].Phrase), len(reps[i].Phrase))
	}

	pos := func(phrase string) int {
		for i, r := range reps {
			if r.Phrase == phrase {
				return i
			}
		}
		return -1
	}
	assert.Less(t, pos("in witness whereof"), pos("whereas"))
	assert.Less(t, pos("hereinafter"), pos("herein"))
}

func TestCompile_InvalidEntityPattern(t *testing.T) {
	tbl := Default()
	tbl.Entities.Patterns[0].Pattern = `\$[`
	_, err := tbl.Compile()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRulesInvalid))
}

func TestCompile_InvalidNumberedPattern(t *testing.T) {
	tbl := Default()
	tbl.Segmentation.NumberedPatterns = []string{`(`}
	_, err := tbl.Compile()
	assert.True(t, errors.IsCode(err, errors.ErrCodeRulesInvalid))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Tables)
	}{
		{"general clause rule", func(t *Tables) { t.ClauseRules[0].Type = legal.ClauseGeneral }},
		{"unknown clause type", func(t *Tables) { t.ClauseRules[0].Type = "Warranty" }},
		{"empty keywords", func(t *Tables) { t.ClauseRules[1].Keywords = nil }},
		{"unknown document type", func(t *Tables) { t.Documents.Rules[0].Type = "Will" }},
		{"zero normalization", func(t *Tables) { t.Documents.Normalization = 0 }},
		{"fallback confidence", func(t *Tables) { t.Documents.FallbackConfidence = 1.5 }},
		{"fallback confidence above low band", func(t *Tables) { t.Documents.FallbackConfidence = 0.31 }},
		{"negative fallback confidence", func(t *Tables) { t.Documents.FallbackConfidence = -0.1 }},
		{"empty phrase", func(t *Tables) { t.Simplification.Replacements[3].Phrase = "" }},
		{"max below min", func(t *Tables) { t.Segmentation.DefaultMaxLength = 10 }},
		{"entity confidence", func(t *Tables) { t.Entities.Patterns[1].Confidence = -1 }},
		{"summary sentences", func(t *Tables) { t.Insight.SummarySentences = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tbl := Default()
			tc.mutate(tbl)
			err := tbl.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeRulesInvalid))
		})
	}
	assert.NoError(t, Default().Validate())

	edge := Default()
	edge.Documents.FallbackConfidence = MaxFallbackConfidence
	assert.NoError(t, edge.Validate())
}

func TestCompile_LowercasesInsightTerms(t *testing.T) {
	tbl := Default()
	tbl.Insight.SummaryKeywords = []string{" Shall ", "Payment"}
	tbl.Insight.PositiveTerms = []string{"Benefit"}
	tbl.Insight.NegativeTerms = []string{"PENALTY", ""}
	tbl.Insight.KeyPhraseTerms = []string{"Must"}
	tbl.Insight.KeyPoints = []KeyPoint{{Term: "Confidential", Point: "Contains confidentiality obligations"}, {Term: " "}}

	c, err := tbl.Compile()
	require.NoError(t, err)
	in := c.Insight()
	assert.Equal(t, []string{"shall", "payment"}, in.SummaryKeywords)
	assert.Equal(t, []string{"benefit"}, in.PositiveTerms)
	assert.Equal(t, []string{"penalty"}, in.NegativeTerms)
	assert.Equal(t, []string{"must"}, in.KeyPhraseTerms)
	assert.Equal(t, []KeyPoint{{Term: "confidential", Point: "Contains confidentiality obligations"}}, in.KeyPoints)
	assert.Equal(t, "Confidential", tbl.Insight.KeyPoints[0].Term, "source tables are left untouched")
}

func TestParse_OverlaysOnlyPresentSections(t *testing.T) {
	data := []byte(`
clause_rules:
  - type: Payment
    keywords: [invoice]
documents:
  normalization: 5
`)
	tbl, err := Parse(data)
	require.NoError(t, err)

	require.Len(t, tbl.ClauseRules, 1)
	assert.Equal(t, legal.ClausePayment, tbl.ClauseRules[0].Type)
	assert.Equal(t, 5.0, tbl.Documents.Normalization)

	def := Default()
	assert.Equal(t, def.Documents.Rules, tbl.Documents.Rules)
	assert.Equal(t, def.Segmentation, tbl.Segmentation)
	assert.Equal(t, def.Simplification.Replacements, tbl.Simplification.Replacements)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("clause_rules: [unterminated"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeRulesInvalid))
}

func TestLoad(t *testing.T) {
	tbl, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), tbl)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeRulesInvalid))

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("insight:\n  summary_sentences: 3\n"), 0o600))
	tbl, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Insight.SummarySentences)
	assert.Equal(t, 200, tbl.Insight.WordsPerMinute)
}

func TestMarshal_RoundTrip(t *testing.T) {
	out, err := Marshal(Default())
	require.NoError(t, err)
	back, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, Default(), back)
}

func TestIndexWord(t *testing.T) {
	cases := []struct {
		s, phrase string
		want      int
	}{
		{"Pursuant to the deal", "pursuant to", 0},
		{"Deal is Herein described", "herein", 8},
		{"hereinafter called", "herein", -1},
		{"the post-closing date", "post", 4},
		{"composted waste", "post", -1},
		{"i.e. the buyer", "i.e.", 0},
		{"supra.", "supra", 0},
		{"", "x", -1},
		{"abc", "", -1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IndexWord(tc.s, tc.phrase, 0), "%q in %q", tc.phrase, tc.s)
	}
	assert.Equal(t, 9, IndexWord("ante and ante", "ante", 1))
}

func TestContainsWord(t *testing.T) {
	assert.True(t, ContainsWord("If the buyer pays", "if"))
	assert.False(t, ContainsWord("the difference", "if"))
	assert.True(t, ContainsWord("except as noted", "except as"))
}

//Personal.AI order the ending
