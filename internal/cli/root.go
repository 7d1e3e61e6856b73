// Package cli は勤怠 API を操作するコマンドラインツールです。
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/nikkisuraj26/cafe54-timecard/internal/adapters/apiclient"
	"github.com/spf13/cobra"
)

const (
	apiEnv     = "TIMECARD_API"
	defaultAPI = "http://localhost:5000"
)

type rootOptions struct {
	api string
}

func (o *rootOptions) client() *apiclient.Client {
	return apiclient.New(o.api)
}

// NewRootCommand はサブコマンドを登録したルートコマンドを返します。
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "timecardctl",
		Short: "timecardctl - manage employee timesheets from the terminal",
		Long: `timecardctl talks to a running timecard server.
The server address is taken from --api or the TIMECARD_API environment variable.`,
		SilenceUsage: true,
	}

	api := os.Getenv(apiEnv)
	if api == "" {
		api = defaultAPI
	}
	root.PersistentFlags().StringVar(&opts.api, "api", api, "base URL of the timecard server")

	root.AddCommand(newEmployeesCommand(opts))
	root.AddCommand(newWeeksCommand(opts))
	root.AddCommand(newSaveCommand(opts))
	root.AddCommand(newReportCommand(opts))
	root.AddCommand(newHealthCommand(opts))
	return root
}

// Execute は main から呼ばれるエントリポイントです。
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printLines(w io.Writer, lines []string, empty string) {
	if len(lines) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
