package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/renovation-quote/internal/cli"
	"github.com/Veraticus/renovation-quote/internal/export"
	"github.com/Veraticus/renovation-quote/internal/model"
	"github.com/Veraticus/renovation-quote/internal/storage"
)

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <description...>",
		Short: "Generate a quote from a renovation description",
		Long: `Generate a priced quote from a free-text bathroom renovation request.

Example:
  quote generate "4m² bathroom renovation with tiles and plumbing in Marseille"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runGenerate,
	}

	cmd.Flags().StringP("output", "o", "", "write the quote to this file (.json, .yaml or .yml)")
	cmd.Flags().Bool("save", false, "write the quote to the configured output directory")
	cmd.Flags().String("format", "json", "document format when saving to the output directory (json, yaml)")
	cmd.Flags().String("xlsx", "", "also export the quote as a spreadsheet")
	cmd.Flags().Bool("vat", false, "show the VAT breakdown")
	cmd.Flags().Bool("suggestions", false, "show suggestions for flagged estimates")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline(viper.GetViper())
	if err != nil {
		return err
	}

	q, err := p.engine.Generate(strings.Join(args, " "))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	showVAT, _ := cmd.Flags().GetBool("vat")
	showSuggestions, _ := cmd.Flags().GetBool("suggestions")
	fmt.Fprint(out, cli.RenderQuote(q, renderOptions(p, q, showVAT, showSuggestions))) //nolint:forbidigo // User-facing output

	path, _ := cmd.Flags().GetString("output")
	save, _ := cmd.Flags().GetBool("save")
	if path != "" || save {
		written, err := saveQuote(p, q, path, cmd)
		if err != nil {
			// The quote was already shown; report the failure without losing it.
			return fmt.Errorf("quote %s generated but not saved: %w", q.ID, err)
		}
		fmt.Fprintln(out, cli.FormatSuccess("Saved "+written)) //nolint:forbidigo // User-facing output
	}

	if xlsx, _ := cmd.Flags().GetString("xlsx"); xlsx != "" {
		b := p.engine.VATBreakdown(q)
		if err := export.WriteFile(q, &b, xlsx); err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatSuccess("Exported "+xlsx)) //nolint:forbidigo // User-facing output
	}

	return nil
}

func saveQuote(p *pipeline, q *model.Quote, path string, cmd *cobra.Command) (string, error) {
	if path != "" {
		return storage.WriteQuote(q, path, "")
	}

	formatName, _ := cmd.Flags().GetString("format")
	format, err := storage.ParseFormat(formatName)
	if err != nil {
		return "", err
	}
	dir := p.engine.Rules().OutputDir
	return storage.WriteQuote(q, storage.DefaultPath(dir, q, format), dir)
}

func renderOptions(p *pipeline, q *model.Quote, showVAT, showSuggestions bool) cli.RenderOptions {
	opts := cli.RenderOptions{Suggestions: showSuggestions}
	if showVAT {
		b := p.engine.VATBreakdown(q)
		opts.VAT = &b
	}
	return opts
}
