package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cradlehq/backend/internal/dates"
	"github.com/cradlehq/backend/internal/models"
	"github.com/cradlehq/backend/internal/schedule"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print a child's checklist timeline",
	Long: `Generate the checklist timeline for a date of birth from the built-in
reference tables, without touching any store.`,
	Example: "  cradle-api schedule --dob 2024-01-31 --jurisdiction NSW --format table",
	RunE:    runSchedule,
}

var (
	scheduleDOB          string
	scheduleJurisdiction string
	scheduleFormat       string
)

func init() {
	scheduleCmd.Flags().StringVar(&scheduleDOB, "dob", "", "Date of birth (YYYY-MM-DD)")
	scheduleCmd.Flags().StringVar(&scheduleJurisdiction, "jurisdiction", "", "State or territory for registration links (e.g. NSW)")
	scheduleCmd.Flags().StringVar(&scheduleFormat, "format", "table", "Output format: table or json")
	_ = scheduleCmd.MarkFlagRequired("dob")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	dob, err := dates.ParseDay(scheduleDOB, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid --dob: %w", err)
	}

	jurisdiction := strings.ToUpper(strings.TrimSpace(scheduleJurisdiction))
	items := schedule.Generate("preview", dob, jurisdiction, schedule.DefaultTables())

	switch scheduleFormat {
	case "table":
		return writeScheduleTable(cmd.OutOrStdout(), items)
	case "json":
		return writeScheduleJSON(cmd.OutOrStdout(), items)
	default:
		return fmt.Errorf("unsupported --format %q (want table or json)", scheduleFormat)
	}
}

func writeScheduleTable(w io.Writer, items []models.ChecklistItem) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DUE\tCATEGORY\tPRIORITY\tTITLE")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			dates.DayKey(item.DueDate), item.Category, item.Priority, item.Title)
	}
	return tw.Flush()
}

type scheduleEntry struct {
	ReferenceID string                   `json:"reference_id"`
	DueDate     string                   `json:"due_date"`
	Category    models.ChecklistCategory `json:"category"`
	Priority    models.Priority          `json:"priority"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Metadata    map[string]interface{}   `json:"metadata"`
}

func writeScheduleJSON(w io.Writer, items []models.ChecklistItem) error {
	entries := make([]scheduleEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, scheduleEntry{
			ReferenceID: item.ReferenceID,
			DueDate:     dates.DayKey(item.DueDate),
			Category:    item.Category,
			Priority:    item.Priority,
			Title:       item.Title,
			Description: item.Description,
			Metadata:    item.Metadata,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
