package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/pairline/internal/topics"
)

func topicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Inspect the conversation topic catalog",
	}
	cmd.AddCommand(topicsListCmd())
	return cmd
}

func topicsListCmd() *cobra.Command {
	var jsonOutput bool
	var file string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the topic catalog (built-in or from a file)",
		RunE: func(cmd *cobra.Command, args []string) error {
			selector := topics.NewSelector()
			if file != "" {
				if err := selector.Load(file); err != nil {
					return err
				}
			}

			catalog := selector.Catalog()
			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(catalog)
			}
			for i, topic := range catalog {
				fmt.Printf("%3d. %s\n", i+1, topic)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().StringVarP(&file, "file", "f", "", "load catalog from a YAML file")
	return cmd
}
