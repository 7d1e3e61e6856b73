package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/nikkisuraj26/cafe54-timecard/internal/adapters/apiclient"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/report"
	"github.com/spf13/cobra"
)

func newEmployeesCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employees",
		Short: "List registered employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := opts.client().ListEmployees(cmd.Context())
			if err != nil {
				return err
			}
			printLines(cmd.OutOrStdout(), names, "no employees")
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Register an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := opts.client().AddEmployee(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", created.Name, created.ID)
			return nil
		},
	})
	return cmd
}

func newWeeksCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weeks",
		Short: "List week periods that have saved timesheets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			weeks, err := opts.client().ListWeekPeriods(cmd.Context())
			if err != nil {
				return err
			}
			printLines(cmd.OutOrStdout(), weeks, "no saved weeks")
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "current",
		Short: "Print the label of the current Monday to Sunday week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			week, err := opts.client().CurrentWeek(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), week.Label)
			return nil
		},
	})
	return cmd
}

func newSaveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save NAME WEEK MINUTES",
		Short: "Save the weekly total for an employee, overwriting an earlier save",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("minutes must be a whole number: %w", err)
			}
			saved, err := opts.client().SaveTimesheet(cmd.Context(), apiclient.SaveTimesheetRequest{
				EmployeeName: args[0],
				WeekPeriod:   args[1],
				TotalMinutes: &minutes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s %s: %d minutes\n", saved.EmployeeName, saved.WeekPeriod, saved.TotalMinutes)
			return nil
		},
	}
}

func newReportCommand(opts *rootOptions) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "report [WEEK]",
		Short: "Print the weekly report; defaults to the current week",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if !validFormat(format) {
				return fmt.Errorf("unknown format %q", format)
			}

			c := opts.client()
			ctx := cmd.Context()

			var week string
			if len(args) == 1 {
				week = args[0]
			} else {
				current, err := c.CurrentWeek(ctx)
				if err != nil {
					return err
				}
				week = current.Label
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer func() {
					if cerr := f.Close(); cerr != nil && err == nil {
						err = cerr
					}
				}()
				w = f
			}

			if format == "xlsx" {
				book, err := c.ReportXLSX(ctx, week)
				if err != nil {
					return err
				}
				_, err = w.Write(book)
				return err
			}

			r, err := c.Report(ctx, week)
			if err != nil {
				return err
			}
			return writeReport(w, r, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "md", "Output format: md, csv, json, xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file instead of stdout")
	return cmd
}

func validFormat(format string) bool {
	switch format {
	case "md", "text", "csv", "json", "xlsx":
		return true
	}
	return false
}

func writeReport(w io.Writer, r *report.Report, format string) error {
	switch format {
	case "md", "text":
		return report.WriteText(w, r)
	case "csv":
		return report.WriteCSV(w, r)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func newHealthCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server and storage status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := opts.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "status:     %s\n", h.Status)
			fmt.Fprintf(w, "backend:    %s\n", h.Storage.Backend)
			fmt.Fprintf(w, "persistent: %t\n", h.Storage.Persistent)
			fmt.Fprintf(w, "degraded:   %t\n", h.Storage.Degraded)
			if h.Storage.LastError != "" {
				fmt.Fprintf(w, "last error: %s\n", h.Storage.LastError)
			}
			if !h.Storage.Persistent || h.Storage.Degraded {
				fmt.Fprintln(w, "warning: data will NOT persist")
			}
			return nil
		},
	}
}
