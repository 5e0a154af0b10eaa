package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/zoocards/internal/app"
)

// newScrapeCmd creates the 'scrape' subcommand.
func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape animal pages into the records CSV",
		Long: `Walks the listing one page at a time until a page yields no links,
extracting each animal page with a fixed pause between fetches. Records are
written to the CSV file and, when db.dsn is set, upserted into Postgres.
An interrupt stops the walk; records gathered so far are still written.`,
		Args: cobra.NoArgs,
		RunE: withApp(runScrapeCommand),
	}

	flags := cmd.Flags()
	flags.String("output", "", "records CSV path (output.records_csv)")
	flags.String("base-url", "", "site base URL (site.base_url)")
	flags.Int("max-pages", 0, "stop after this many listing pages, 0 for no limit (site.max_pages)")
	flags.Duration("delay", 0, "pause between animal page fetches (scraper.delay)")
	bindFlag(flags, "output", "output.records_csv")
	bindFlag(flags, "base-url", "site.base_url")
	bindFlag(flags, "max-pages", "site.max_pages")
	bindFlag(flags, "delay", "scraper.delay")
	return cmd
}

func runScrapeCommand(cmd *cobra.Command, appInstance *app.App) error {
	logger := appInstance.Logger()

	s, err := appInstance.Scraper(cmd.Context())
	if err != nil {
		return err
	}

	summary, err := s.Run(cmd.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("Scrape interrupted; partial records saved", zap.Int("records", summary.Records))
			renderSummary(cmd.OutOrStdout(), appInstance.RunID(), summary)
			return nil
		}
		return fmt.Errorf("run scraper: %w", err)
	}

	renderSummary(cmd.OutOrStdout(), appInstance.RunID(), summary)
	logger.Info("Scrape command finished.",
		zap.String("csv", appInstance.Config().Output.RecordsCSV),
		zap.Int("records", summary.Records),
	)
	return nil
}
