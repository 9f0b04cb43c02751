package main

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/starboard/internal/adapters/render"
	"github.com/spf13/cobra"
)

// stdoutPath selects stdout as the report destination.
const stdoutPath = "-"

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "write the JSON render description here, - for stdout")
	cmd.Flags().Int("top", 0, "number of participants listed in the summary")
}

func newReportCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Process the export once and print a summary",
		Long: `Process the export once, print the leaderboard summary and optionally
write the render description for all five panels as JSON.`,
		Args: cobra.NoArgs,
		RunE: c.runReport,
	}
	addReportFlags(cmd)
	return cmd
}

func (c *cli) runReport(cmd *cobra.Command, _ []string) error {
	svc, err := c.newService()
	if err != nil {
		return err
	}
	res, err := svc.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("process %s: %w", c.cfg.DataPath, err)
	}

	// The summary moves to stderr when stdout carries the JSON report.
	summaryOut := c.stdout
	if c.cfg.OutputPath == stdoutPath {
		summaryOut = c.stderr
	}
	if err := render.WriteSummary(summaryOut, res.Summary); err != nil {
		return err
	}

	if c.cfg.OutputPath == "" {
		return nil
	}
	return c.writeReport(c.cfg.OutputPath, res.Report)
}

func (c *cli) writeReport(path string, report render.Report) (err error) {
	var w io.Writer = c.stdout
	if path != stdoutPath {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close %s: %w", path, cerr)
			}
		}()
		w = f
	}
	return render.Write(w, report)
}
