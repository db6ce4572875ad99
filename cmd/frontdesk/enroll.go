package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
)

var enrollExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// Registrar is the part of the employee service enroll needs
type Registrar interface {
	Register(ctx context.Context, name string, image []byte) (*domain.Employee, error)
}

type enrollFailure struct {
	File string
	Err  error
}

type enrollResult struct {
	Registered []*domain.Employee
	Failures   []enrollFailure
}

func newEnrollCmd(load configLoader) *cobra.Command {
	var (
		dir   string
		quiet bool
	)

	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Register every image in a directory as an employee",
		Long: `Register every image in a directory as an employee named after the file
name without its extension. Files that fail (no face, unreadable image) are
reported and skipped.

Examples:
  frontdesk enroll --dir ./staff-photos`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := enrollFiles(dir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				cmd.Printf("No images found in %s\n", dir)
				return nil
			}

			cfg, logger, err := load()
			if err != nil {
				return err
			}

			c, err := buildComponents(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer c.Close()

			// No dashboards listen during enrollment, but the hub must drain.
			// Webhook events are queued for the server's worker.
			hubCtx, stopHub := context.WithCancel(cmd.Context())
			defer stopHub()
			go c.hub.Run(hubCtx)

			var bar *progressbar.ProgressBar
			if !quiet {
				bar = progressbar.NewOptions(len(files),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("Enrolling employees"),
					progressbar.OptionShowCount(),
					progressbar.OptionShowIts(),
					progressbar.OptionSetItsString("images"),
					progressbar.OptionShowElapsedTimeOnFinish(),
					progressbar.OptionSetPredictTime(true),
					progressbar.OptionFullWidth(),
				)
			}

			result := enroll(cmd.Context(), c.employees, files, bar, logger)
			printEnrollSummary(cmd.OutOrStdout(), result)

			if len(result.Registered) == 0 {
				return fmt.Errorf("no employees enrolled")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory of employee photos")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Hide the progress bar")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}

// enrollFiles lists image files directly inside dir, sorted by name
func enrollFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if enrollExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

func employeeName(file string) string {
	base := filepath.Base(file)
	return strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
}

func enroll(ctx context.Context, registrar Registrar, files []string, bar *progressbar.ProgressBar, logger *slog.Logger) enrollResult {
	var result enrollResult

	for _, file := range files {
		if ctx.Err() != nil {
			result.Failures = append(result.Failures, enrollFailure{File: file, Err: ctx.Err()})
			continue
		}

		employee, err := enrollOne(ctx, registrar, file)
		if err != nil {
			logger.Debug("enroll failed", slog.String("file", file), slog.Any("error", err))
			result.Failures = append(result.Failures, enrollFailure{File: file, Err: err})
		} else {
			result.Registered = append(result.Registered, employee)
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	return result
}

func enrollOne(ctx context.Context, registrar Registrar, file string) (*domain.Employee, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return registrar.Register(ctx, employeeName(file), data)
}

func printEnrollSummary(w io.Writer, result enrollResult) {
	fmt.Fprintf(w, "\nEnrolled %d employee(s), %d failure(s)\n", len(result.Registered), len(result.Failures))
	for _, e := range result.Registered {
		fmt.Fprintf(w, "  + %s (id %d)\n", e.Name, e.ID)
	}
	for _, f := range result.Failures {
		fmt.Fprintf(w, "  - %s: %v\n", filepath.Base(f.File), f.Err)
	}
}
