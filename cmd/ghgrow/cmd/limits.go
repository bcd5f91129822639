package cmd

import (
	"os"
	"time"

	"ghgrow/lib/github"
	"ghgrow/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(limitsCmd)
}

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Prints the current GitHub API rate limit status.",
	Run: func(cmd *cobra.Command, args []string) {
		config, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("invalid configuration", err)
		}

		client := github.NewClient(github.ClientOptions{Token: config.Token})
		status, err := client.RateLimit(serviceutil.SignalContext())
		if err != nil {
			serviceutil.Fatal("failed to check rate limit", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Remaining", "Resets"})
		t.AppendRow(table.Row{status.Remaining, status.Reset.Local().Format(time.RFC1123)})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
