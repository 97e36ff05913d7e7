package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <category>",
	Short: "Export the flow graph visualization",
	Long:  `Compiles a category's questions and outputs a Mermaid diagram (graph TD) representing the flow and its conditional rules.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		wb, err := newWorkbench(cmd)
		if err != nil {
			fmt.Printf("Error initializing espalier: %v\n", err)
			os.Exit(1)
		}

		var answers domain.Answers
		if pairs, _ := cmd.Flags().GetStringToString("answer"); len(pairs) > 0 {
			answers = domain.Answers{}
			for id, value := range pairs {
				answers[id] = value
			}
		}

		output, err := wb.Mermaid(cmd.Context(), args[0], answers)
		if err != nil {
			fmt.Printf("Error compiling graph: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(output)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringToString("answer", nil, "Answer overlay as question=value pairs; visible questions are highlighted")
}
