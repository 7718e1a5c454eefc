package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/renovation-quote/internal/cli"
	"github.com/Veraticus/renovation-quote/internal/export"
	"github.com/Veraticus/renovation-quote/internal/storage"
)

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <quote-file>",
		Short: "Display a saved quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := storage.ReadQuote(args[0])
			if err != nil {
				return err
			}
			p, err := buildPipeline(viper.GetViper())
			if err != nil {
				return err
			}

			showVAT, _ := cmd.Flags().GetBool("vat")
			showSuggestions, _ := cmd.Flags().GetBool("suggestions")
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderQuote(q, renderOptions(p, q, showVAT, showSuggestions))) //nolint:forbidigo // User-facing output
			return nil
		},
	}

	cmd.Flags().Bool("vat", false, "show the VAT breakdown")
	cmd.Flags().Bool("suggestions", false, "show suggestions for flagged estimates")

	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <quote-file> <xlsx-file>",
		Short: "Export a saved quote as a spreadsheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := storage.ReadQuote(args[0])
			if err != nil {
				return err
			}
			p, err := buildPipeline(viper.GetViper())
			if err != nil {
				return err
			}

			b := p.engine.VATBreakdown(q)
			if err := export.WriteFile(q, &b, args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Exported "+args[1])) //nolint:forbidigo // User-facing output
			return nil
		},
	}
	return cmd
}

func ratesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Show the pricing tables in force",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := buildPipeline(viper.GetViper())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderRates(p.ratesView())) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}
