package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/kindred/cliparse"
	"github.com/danielhkuo/kindred/compat"
	"github.com/danielhkuo/kindred/models"
)

func newScoreCmd() *cobra.Command {
	var detail bool
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "score A.yaml B.yaml",
		Short: "Score two answer files against each other",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readAnswers(args[0])
			if err != nil {
				return err
			}
			b, err := readAnswers(args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			result := compat.BidirectionalScore(a, b)
			fmt.Fprintf(out, "a_to_b:  %d\nb_to_a:  %d\naverage: %d\n", result.AToB, result.BToA, result.Average)
			if !detail {
				return nil
			}

			cat, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%s against %s\n", args[0], args[1])
			printRows(out, compat.DetailedComparison(a, b, cat))
			fmt.Fprintf(out, "\n%s against %s\n", args[1], args[0])
			printRows(out, compat.DetailedComparison(b, a, cat))
			return nil
		},
	}
	cmd.Flags().BoolVar(&detail, "detail", false, "Print the per-field breakdown in both directions")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Question catalog YAML for question text (default: built-in)")
	return cmd
}

func newRankCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "rank SUBJECT.yaml CANDIDATE.yaml...",
		Short: "Rank candidate answer files for a subject",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, err := readCandidate(args[0])
			if err != nil {
				return err
			}
			candidates := make([]compat.Candidate, 0, len(args)-1)
			for _, path := range args[1:] {
				c, err := readCandidate(path)
				if err != nil {
					return err
				}
				candidates = append(candidates, c)
			}

			ranked, err := compat.RankCandidates(cmd.Context(), subject, candidates, workers)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tCANDIDATE\tAVERAGE\tA_TO_B\tB_TO_A")
			for _, m := range ranked {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", humanize.Ordinal(m.Rank), m.UserID, m.Result.Average, m.Result.AToB, m.Result.BToA)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", cliparse.DefaultScoreWorkers, "Concurrent scoring workers")
	return cmd
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect question catalogs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate [FILE]",
		Short: "Check a catalog file, or the built-in catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			cat, err := loadCatalog(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if path == "" {
				path = "built-in catalog"
			}
			categories := cat.Categories()
			fmt.Fprintf(out, "%s: %s questions in %s categories\n", path, humanize.Comma(int64(cat.Len())), humanize.Comma(int64(len(categories))))
			for _, c := range categories {
				fmt.Fprintf(out, "  %-24s %d\n", c.Name, len(c.Questions))
			}
			return nil
		},
	})
	return cmd
}

// readAnswers decodes a YAML mapping of question id to answer value.
func readAnswers(path string) (models.AnswerSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	answers := make(models.AnswerSet, len(raw))
	for id, r := range raw {
		v, err := models.ValueOf(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", path, id, err)
		}
		if v.IsNull() {
			continue
		}
		answers[id] = v
	}
	return answers, nil
}

// readCandidate reads an answer file, naming it after the file.
func readCandidate(path string) (compat.Candidate, error) {
	answers, err := readAnswers(path)
	if err != nil {
		return compat.Candidate{}, err
	}
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return compat.Candidate{UserID: id, Answers: answers}, nil
}

func printRows(w io.Writer, rows []models.ComparisonRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "  no applicable preferences")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  QUESTION\tPREFERENCE\tPROFILE\tSCORE\tMATCH\tIMPORTANCE")
	for _, r := range rows {
		match := "no"
		if r.IsMatch {
			match = "yes"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%.2f\t%s\t%s\n", r.QuestionText, r.PreferenceValue, r.ProfileValue, r.Score, match, r.ImportanceLabel)
	}
	tw.Flush()
}
