package cmd

import (
	"errors"
	"fmt"
	"os"

	"ghgrow/lib/github"
	"ghgrow/lib/serviceutil"
	"ghgrow/lib/telemetry"
	"ghgrow/services/grow"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Discovers follow candidates and follows them up to the daily cap.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := serviceutil.SignalContext()

		tel, err := telemetry.SetupFromEnv(ctx, "ghgrow")
		if err != nil && !os.IsNotExist(err) {
			serviceutil.Fatal("failed to setup telemetry", err)
		}
		if err == nil {
			defer tel.Shutdown(ctx)
			telemetry.InstrumentPerfStats(ctx)
		}

		config, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("invalid configuration", err)
		}

		client := github.NewClient(github.ClientOptions{Token: config.Token})
		service := grow.NewService(client, config.Grow)

		summary, err := service.Run(ctx)
		if err != nil {
			serviceutil.Fatal("run failed", err)
		}

		renderSummary(summary)

		if errors.Is(summary.Aborted, github.ErrAuthentication) {
			os.Exit(1)
		}
	},
}

func renderSummary(summary grow.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Viewer", "Followers", "Following", "Candidates", "Attempted", "Followed", "Failed"})
	t.AppendRow(table.Row{
		summary.Viewer,
		summary.Followers,
		summary.Following,
		summary.Candidates,
		summary.Attempted,
		summary.Followed,
		summary.Failed,
	})
	t.SetStyle(table.StyleRounded)
	t.Render()

	if len(summary.Outcomes) > 0 {
		t = table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"User", "Result"})
		for _, o := range summary.Outcomes {
			result := "followed"
			if !o.Followed {
				result = fmt.Sprintf("failed: %s", o.Err)
			}
			t.AppendRow(table.Row{o.Login, result})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	}

	if summary.Aborted != nil {
		fmt.Fprintln(os.Stderr, "run cut short:", summary.Aborted)
	}
}
