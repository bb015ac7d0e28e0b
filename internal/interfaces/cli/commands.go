package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/turtacn/ClauseWise/internal/analysis/rules"
	"github.com/turtacn/ClauseWise/internal/application/analysis"
	"github.com/turtacn/ClauseWise/internal/ingestion"
	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

const stdinArg = "-"

// runFunc is the body shared by the document commands: the input is already
// read into doc and ctx carries the --timeout deadline.
type runFunc func(ctx context.Context, cmd *cobra.Command, cliCtx *CLIContext, doc legal.Document) error

func documentCommand(use, short string, run runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " FILE|-",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			doc, err := readDocument(ctx, cmd, cliCtx.Extractor, args[0])
			if err != nil {
				return err
			}
			return run(ctx, cmd, cliCtx, doc)
		},
	}
}

// readDocument reads a file path, or stdin for "-", through the plain-text
// extractor.
func readDocument(ctx context.Context, cmd *cobra.Command, extractor *ingestion.Extractor, arg string) (legal.Document, error) {
	var res legal.IngestionResult
	filename := "stdin"
	if arg == stdinArg {
		res = extractor.Extract(ctx, "", cmd.InOrStdin())
	} else {
		f, err := os.Open(arg)
		if err != nil {
			return legal.Document{}, errors.InputError("cannot open input").WithDetail(err.Error())
		}
		defer f.Close()
		filename = filepath.Base(arg)
		res = extractor.Extract(ctx, filename, f)
	}
	if err := ingestion.Err(res); err != nil {
		return legal.Document{}, err
	}
	return legal.NewDocument(filename, res.Text), nil
}

// emit prints a result's warnings to stderr and its value in the chosen format.
func emit[T any](cmd *cobra.Command, res legal.Result[T], view func(T) interface{}) error {
	v, err := res.Unwrap()
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	return PrintResult(cmd, view(v))
}

// ─────────────────────────────────────────────────────────────────────────────
// Document commands
// ─────────────────────────────────────────────────────────────────────────────

func newAnalyzeCmd() *cobra.Command {
	var clauseLimit int
	cmd := documentCommand("analyze", "Run the full analysis and print the report",
		func(ctx context.Context, cmd *cobra.Command, cliCtx *CLIContext, doc legal.Document) error {
			report, err := cliCtx.Analyzer.Analyze(ctx, doc, analysis.Options{ClauseLimit: clauseLimit})
			if err != nil {
				return err
			}
			for _, w := range report.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			return PrintResult(cmd, reportView{report})
		})
	cmd.Flags().IntVar(&clauseLimit, "clause-limit", 0, "clauses to annotate (default from config)")
	return cmd
}

func newSegmentCmd() *cobra.Command {
	return documentCommand("segment", "Split the document into clauses",
		func(_ context.Context, cmd *cobra.Command, cliCtx *CLIContext, doc legal.Document) error {
			return PrintResult(cmd, clauseList(cliCtx.Analyzer.Segment(doc.RawText)))
		})
}

func newClassifyCmd() *cobra.Command {
	var clause bool
	cmd := documentCommand("classify", "Classify the document type, or a single clause with --clause",
		func(ctx context.Context, cmd *cobra.Command, cliCtx *CLIContext, doc legal.Document) error {
			if clause {
				return PrintResult(cmd, clauseTypeView{ClauseType: cliCtx.Analyzer.ClassifyClause(doc.RawText)})
			}
			return emit(cmd, cliCtx.Analyzer.Classify(ctx, doc), func(c legal.Classification) interface{} {
				return classificationView(c)
			})
		})
	cmd.Flags().BoolVar(&clause, "clause", false, "treat the input as one clause")
	return cmd
}

func newSimplifyCmd() *cobra.Command {
	var clause bool
	cmd := documentCommand("simplify", "Rewrite legal language in plain English",
		func(ctx context.Context, cmd *cobra.Command, cliCtx *CLIContext, doc legal.Document) error {
			if clause {
				return PrintResult(cmd, textView{Label: "simplified", Text: cliCtx.Analyzer.SimplifyClause(doc.RawText)})
			}
			return emit(cmd, cliCtx.Analyzer.SimplifyDocument(ctx, doc), func(s string) interface{} {
				return textView{Label: "simplified", Text: s}
			})
		})
	cmd.Flags().BoolVar(&clause, "clause", false, "simplify the input as one clause with the local rewriter")
	return cmd
}

func newEntitiesCmd() *cobra.Command {
	return documentCommand("entities", "Extract organizations, dates, amounts, legal terms and obligations",
		func(ctx context.Context, cmd *cobra.Command, cliCtx *CLIContext, doc legal.Document) error {
			return emit(cmd, cliCtx.Analyzer.ExtractEntities(ctx, doc), func(e []legal.Entity) interface{} {
				return entityList(e)
			})
		})
}

func newSummarizeCmd() *cobra.Command {
	return documentCommand("summarize", "Summarize the document",
		func(ctx context.Context, cmd *cobra.Command, cliCtx *CLIContext, doc legal.Document) error {
			return emit(cmd, cliCtx.Analyzer.Summarize(ctx, doc), func(s string) interface{} {
				return textView{Label: "summary", Text: s}
			})
		})
}

func newStatsCmd() *cobra.Command {
	return documentCommand("stats", "Count words, sentences and paragraphs",
		func(_ context.Context, cmd *cobra.Command, cliCtx *CLIContext, doc legal.Document) error {
			return PrintResult(cmd, statsView(cliCtx.Analyzer.Stats(doc.RawText)))
		})
}

func newClausesCmd() *cobra.Command {
	var limit int
	cmd := documentCommand("clauses", "Segment, classify and simplify each clause",
		func(ctx context.Context, cmd *cobra.Command, cliCtx *CLIContext, doc legal.Document) error {
			return emit(cmd, cliCtx.Analyzer.AnalyzeClauses(ctx, doc, limit), func(c []legal.ClauseAnalysis) interface{} {
				return clauseAnalysisList(c)
			})
		})
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum clauses to analyze (default from config)")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// rules, version
// ─────────────────────────────────────────────────────────────────────────────

func newRulesCmd() *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the rule tables",
	}
	rulesCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Print the effective rule tables as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			out, err := rules.Marshal(cliCtx.Engine.Rules.Tables())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})
	return rulesCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// version needs neither config nor rules.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "clausewise %s (commit: %s, built: %s)\n", Version, GitCommit, BuildDate)
			return nil
		},
	}
}

//Personal.AI order the ending
