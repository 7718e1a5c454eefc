package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/renovation-quote/internal/cli"
	"github.com/Veraticus/renovation-quote/internal/common"
	"github.com/Veraticus/renovation-quote/internal/config"
	"github.com/Veraticus/renovation-quote/internal/storage"
)

type batchResult struct {
	err  error
	id   string
	path string
	line int
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <descriptions-file>",
		Short: "Generate one quote per line of a file",
		Long: `Generate quotes for every non-empty line of a file. Lines starting with #
are ignored. Each quote is written to the output directory; a failing line does
not stop the others.`,
		Args: cobra.ExactArgs(1),
		RunE: runBatch,
	}

	cmd.Flags().IntP("workers", "w", runtime.NumCPU(), "number of quotes generated concurrently")
	cmd.Flags().String("output-dir", "", "directory for generated quotes (default: pricing.output_dir)")
	cmd.Flags().String("format", "json", "document format (json, yaml)")
	cmd.Flags().Bool("no-progress", false, "disable the progress bar")

	return cmd
}

func readDescriptions(path string) ([]string, []int, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var texts []string
	var lines []int
	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		texts = append(texts, text)
		lines = append(lines, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return texts, lines, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	texts, lines, err := readDescriptions(args[0])
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return common.NewUserError("no descriptions found in "+args[0], nil)
	}

	p, err := buildPipeline(viper.GetViper())
	if err != nil {
		return err
	}

	workers, _ := cmd.Flags().GetInt("workers")
	if workers < 1 {
		return common.NewUserError("--workers must be at least 1", nil)
	}
	formatName, _ := cmd.Flags().GetString("format")
	format, err := storage.ParseFormat(formatName)
	if err != nil {
		return err
	}
	dir, _ := cmd.Flags().GetString("output-dir")
	if dir == "" {
		dir = p.engine.Rules().OutputDir
	}
	dir = config.ExpandPath(dir)

	out := cmd.OutOrStdout()
	results := make([]batchResult, len(texts))

	var written int
	var mu sync.Mutex
	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := handler.HandleInterrupts(cmd.Context(), func() string {
		mu.Lock()
		defer mu.Unlock()
		return fmt.Sprintf("%d quotes written to %s before the interruption", written, dir)
	})
	defer stop()

	noProgress, _ := cmd.Flags().GetBool("no-progress")
	var bar interface{ Add(int) error }
	if !noProgress {
		bar = cli.NewProgressBar(cmd.ErrOrStderr(), len(texts), "Generating quotes...")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, text := range texts {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			res := batchResult{line: lines[i]}
			q, err := p.engine.Generate(text)
			if err == nil {
				res.id = q.ID
				res.path, err = storage.WriteQuote(q, storage.DefaultPath(dir, q, format), dir)
			}
			res.err = err

			mu.Lock()
			results[i] = res
			if err == nil {
				written++
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			mu.Unlock()
			return nil
		})
	}
	waitErr := g.Wait()

	var failed int
	for _, res := range results {
		switch {
		case res.line == 0:
			// not started
		case res.err != nil:
			failed++
			common.LogError(res.err, "quote generation failed", common.Fields{"line": res.line})
			fmt.Fprintln(out, cli.FormatError(fmt.Sprintf("line %d: %v", res.line, res.err))) //nolint:forbidigo // User-facing output
		default:
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("line %d: %s → %s", res.line, res.id, res.path))) //nolint:forbidigo // User-facing output
		}
	}

	fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d of %d quotes written to %s", written, len(texts), dir))) //nolint:forbidigo // User-facing output

	if waitErr != nil && !errors.Is(waitErr, context.Canceled) {
		return waitErr
	}
	if handler.WasInterrupted() {
		return common.NewUserError("batch interrupted", context.Canceled)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d descriptions could not be quoted", failed, len(texts))
	}
	return nil
}
