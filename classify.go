package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/color-game/consolidation/catalog"
	"github.com/color-game/consolidation/consolidation"
)

type classifyOptions struct {
	palettePath string
	tokensDir   string
	asJSON      bool
	workers     int
}

func newClassifyCmd() *cobra.Command {
	opts := classifyOptions{}

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Consolidate a palette file offline and print the summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := catalog.Load(opts.palettePath)
			if err != nil {
				return err
			}

			pipeline := consolidation.NewPipeline(thresholdsFromEnv(), opts.workers)
			report, err := pipeline.Run(cmd.Context(), src.Palette)
			if err != nil {
				return err
			}

			if opts.tokensDir != "" {
				written, err := writeTokenFiles(opts.tokensDir, report)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d token files to %s\n", written, opts.tokensDir)
			}

			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return printReport(cmd.OutOrStdout(), src, report, pipeline.Thresholds)
		},
	}

	cmd.Flags().StringVar(&opts.palettePath, "palette", getEnv("PALETTE_PATH", "data/palette.toml"), "palette file (.toml, .yaml or .json)")
	cmd.Flags().StringVar(&opts.tokensDir, "tokens-dir", "", "write <family>.tokens.json files into this directory")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the full report as JSON")
	cmd.Flags().IntVar(&opts.workers, "workers", getEnvInt("CLASSIFY_WORKERS", 0), "classification workers (0 = one per CPU)")
	return cmd
}

// writeTokenFiles writes one design-token document per family that has any
// tokens and returns how many files it wrote.
func writeTokenFiles(dir string, report consolidation.Report) (int, error) {
	all, err := consolidation.ExportAllTokens(report.Families)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create tokens dir: %w", err)
	}

	written := 0
	for _, ft := range all {
		if len(ft.Tokens) == 0 {
			continue
		}
		data, err := json.MarshalIndent(ft.Tokens, "", "  ")
		if err != nil {
			return written, fmt.Errorf("encode tokens for %s: %w", ft.FamilyID, err)
		}
		path := filepath.Join(dir, ft.FamilyID+".tokens.json")
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written++
	}
	return written, nil
}

func printReport(w io.Writer, src catalog.Source, report consolidation.Report, t consolidation.Thresholds) error {
	s := report.Summary
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "source\t%s\n", src.Path)
	fmt.Fprintf(tw, "digest\t%s\n", src.Digest)
	fmt.Fprintf(tw, "legacy colours\t%d\n", s.Total)
	fmt.Fprintf(tw, "classified\t%d\n", s.Classified)
	fmt.Fprintf(tw, "exact\t%d\t(< %.1f)\n", s.Exact, t.Exact)
	fmt.Fprintf(tw, "merged\t%d\t(%.1f to %.1f)\n", s.Merged, t.Exact, t.Merged)
	fmt.Fprintf(tw, "far\t%d\t(>= %.1f)\n", s.Far, t.Far)
	fmt.Fprintf(tw, "unmatched\t%d\t(>= %.1f)\n", s.Unmatched, t.Unmatched)
	fmt.Fprintf(tw, "duplicates\t%d\n", s.Duplicates)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "bucket\tkind\tcolours")
	for _, g := range report.Groups {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", g.ID, g.Kind, g.Len())
	}

	if len(report.Unmatched) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "unmatched\thex\tbucket\tref\tdistance")
		for _, rec := range report.Unmatched {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f\n", rec.Name, rec.Hex, rec.BucketID, rec.RefHex, rec.RoundedDistance())
		}
	}

	return tw.Flush()
}
