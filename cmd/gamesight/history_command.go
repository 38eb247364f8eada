package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ayusman/gamesight/internal/store"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent detections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			st, err := store.New(cfg.DatabasePath())
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer st.Close()

			detections, err := st.Detections().ListRecent(limit)
			if err != nil {
				return fmt.Errorf("list detections: %w", err)
			}

			if asJSON {
				if detections == nil {
					detections = []*store.Detection{}
				}
				return writeJSON(cmd, detections)
			}

			out := cmd.OutOrStdout()
			if len(detections) == 0 {
				fmt.Fprintln(out, "No detections recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistory(detections, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of detections to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print detections as JSON")
	return cmd
}

func renderHistory(detections []*store.Detection, now time.Time) string {
	headers := []string{"When", "Game", "Method", "Confidence", "Match", "Source", "Notified"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft}

	rows := make([][]string, 0, len(detections))
	for _, d := range detections {
		match := d.Keyword
		if match == "" {
			match = d.Template
		}
		if d.Error != "" {
			match = "error: " + d.Error
		}
		rows = append(rows, []string{
			humanize.RelTime(d.CreatedAt, now, "ago", "from now"),
			d.Game,
			d.Method,
			fmt.Sprintf("%.2f", d.Confidence),
			match,
			string(d.Source),
			yesNo(d.Notified),
		})
	}
	return renderTable(headers, rows, aligns)
}
