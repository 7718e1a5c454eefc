package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/renovation-quote/internal/cli"
	"github.com/Veraticus/renovation-quote/internal/common"
	"github.com/Veraticus/renovation-quote/internal/config"
	"github.com/Veraticus/renovation-quote/internal/model"
)

func streamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Quote descriptions read from stdin, one JSON quote per line",
		Long: `Read one description per line from stdin and write one JSON quote per line
to stdout. Invalid descriptions are reported on stderr and skipped.

With --calibration the given file is applied on startup; add --watch to reload
it whenever it changes without restarting the stream.`,
		Args: cobra.NoArgs,
		RunE: runStream,
	}

	cmd.Flags().String("calibration", "", "calibration file applied on startup")
	cmd.Flags().Bool("watch", false, "reload the calibration file when it changes")

	return cmd
}

func runStream(cmd *cobra.Command, _ []string) error {
	p, err := buildPipeline(viper.GetViper())
	if err != nil {
		return err
	}

	calPath, _ := cmd.Flags().GetString("calibration")
	watch, _ := cmd.Flags().GetBool("watch")
	if watch && calPath == "" {
		return common.NewUserError("--watch requires --calibration", nil)
	}
	if calPath != "" {
		cal, cv, err := config.ReadCalibrationFile(calPath)
		if err != nil {
			return err
		}
		if err := p.engine.Recalibrate(cal); err != nil {
			return err
		}
		if watch {
			config.WatchCalibration(cv, slog.Default(), func(cal model.Calibration) {
				if err := p.engine.Recalibrate(cal); err != nil {
					common.LogError(err, "calibration reload rejected", common.Fields{"file": calPath})
				}
			})
		}
	}

	return streamQuotes(cmd, p)
}

func streamQuotes(cmd *cobra.Command, p *pipeline) error {
	ctx := cmd.Context()
	reader := cli.NewLineReader(cmd.InOrStdin())
	enc := json.NewEncoder(cmd.OutOrStdout())
	errOut := cmd.ErrOrStderr()

	var quoted, skipped int
	for {
		line, err := reader.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, cli.ErrInputCancelled) {
			slog.Info("stream canceled", "quoted", quoted, "skipped", skipped)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if line == "" {
			continue
		}

		q, err := p.engine.Generate(line)
		if err != nil {
			skipped++
			fmt.Fprintln(errOut, cli.FormatError(err.Error())) //nolint:forbidigo // User-facing output
			continue
		}
		if err := enc.Encode(q); err != nil {
			return fmt.Errorf("failed to write quote: %w", err)
		}
		quoted++
	}

	common.LogInfo("stream finished", common.Fields{"quoted": quoted, "skipped": skipped})
	return nil
}
