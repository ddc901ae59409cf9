package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	twitter "github.com/anatolykoptev/go-twitter-followers"
)

var extractCmd = &cobra.Command{
	Use:   "extract <profile-url>",
	Short: "Extract a profile's followers to a CSV file",
	Example: `  xfollowers extract https://x.com/jack --bearer-token $TOKEN
  XF_BEARER_TOKEN=... xfollowers extract https://twitter.com/jack -n 250 -o jack.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		maxResults, _ := cmd.Flags().GetInt("max-results")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runExtract(ctx, cmd.OutOrStdout(), args[0], output, maxResults)
	},
}

func init() {
	extractCmd.Flags().StringP("output", "o", "", "CSV file to write (default: x_followers_<timestamp>.csv)")
	extractCmd.Flags().IntP("max-results", "n", 100, "maximum number of followers to fetch")
	RootCmd.AddCommand(extractCmd)
}

func runExtract(ctx context.Context, out io.Writer, profileURL, output string, maxResults int) error {
	client, err := newClient(func(stage twitter.Stage, percent int) {
		slog.Debug("progress", slog.String("stage", stage.String()), slog.Int("percent", percent))
	})
	if err != nil {
		return err
	}

	res, err := client.Extract(ctx, profileURL, maxResults)
	if err != nil {
		return err
	}

	if output == "" {
		output = twitter.ExportFilename(res.FetchedAt)
	}
	size, err := writeExport(output, res.Records)
	if err != nil {
		return err
	}

	printSummary(out, res, output, size)
	return nil
}

func writeExport(path string, records []twitter.FollowerRecord) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	if err := twitter.WriteCSV(f, records); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func printSummary(out io.Writer, res *twitter.Result, path string, size int64) {
	s := res.Summary
	fmt.Fprintf(out, "@%s (id %s), fetched %s\n", res.Handle, res.UserID, humanize.Time(res.FetchedAt))
	fmt.Fprintf(out, "  followers:    %s\n", humanize.Comma(int64(s.Total)))
	fmt.Fprintf(out, "  with website: %s\n", humanize.Comma(int64(s.WithWebsite)))
	fmt.Fprintf(out, "  with email:   %s\n", humanize.Comma(int64(s.WithEmail)))
	fmt.Fprintf(out, "  success rate: %.1f%%\n", s.SuccessRate)
	if res.PageErr != nil {
		fmt.Fprintf(out, "  warning:      partial result, %v\n", res.PageErr)
	}
	fmt.Fprintf(out, "wrote %s (%s)\n", path, humanize.Bytes(uint64(size)))
}
