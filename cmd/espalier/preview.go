package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/espalier-dev/espalier/internal/presentation/tui"
	"github.com/espalier-dev/espalier/pkg/domain"
)

var previewCmd = &cobra.Command{
	Use:   "preview <category>",
	Short: "Render a category flow in the terminal",
	Long:  `Walks a category the way the quote form would for a given set of answers, rendering the questions as rich markdown in the terminal.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		wb, err := newWorkbench(cmd)
		if err != nil {
			fmt.Printf("Error initializing espalier: %v\n", err)
			os.Exit(1)
		}

		answers := domain.Answers{}
		if pairs, _ := cmd.Flags().GetStringToString("answer"); len(pairs) > 0 {
			for id, value := range pairs {
				answers[id] = value
			}
		}

		markdown, err := wb.Preview(cmd.Context(), args[0], answers)
		if err != nil {
			fmt.Printf("Error building preview: %v\n", err)
			os.Exit(1)
		}

		if noColor, _ := cmd.Flags().GetBool("plain"); noColor {
			fmt.Print(markdown)
			return
		}

		tui.PrintBanner()
		render := tui.NewRenderer()
		out, err := render(markdown)
		if err != nil {
			// Fall back to raw markdown if the terminal renderer chokes.
			fmt.Print(markdown)
			return
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringToString("answer", nil, "Answers as question=value pairs")
	previewCmd.Flags().Bool("plain", false, "Print raw markdown without terminal styling")
}
