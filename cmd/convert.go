package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/zoocards/internal/app"
)

// newConvertCmd creates the 'convert' subcommand.
func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert the records CSV into flashcard text",
		Long: `Reads a records CSV written by scrape and writes one flashcard line per
animal. The quizlet format separates term and definition with "," and
cards with ";". The labelled format is a readable alternative.`,
		Args: cobra.NoArgs,
		RunE: withApp(runConvertCommand),
	}

	flags := cmd.Flags()
	flags.String("input", "", "records CSV path (output.records_csv)")
	flags.String("output", "", "flashcard text path (output.flashcards_txt)")
	flags.String("format", "", "quizlet or labelled (output.flashcard_format)")
	bindFlag(flags, "input", "output.records_csv")
	bindFlag(flags, "output", "output.flashcards_txt")
	bindFlag(flags, "format", "output.flashcard_format")
	return cmd
}

func runConvertCommand(cmd *cobra.Command, appInstance *app.App) error {
	converter, err := appInstance.Converter()
	if err != nil {
		return err
	}
	out := appInstance.Config().Output
	if _, err := converter.ConvertFile(cmd.Context(), out.RecordsCSV, out.FlashcardsTxt); err != nil {
		return fmt.Errorf("convert records: %w", err)
	}
	return nil
}
