package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stock-newsroom",
	Short: "A CLI for managing the stock newsroom services",
	Long:  `Stock Newsroom collects financial data, scores market sentiment and drafts articles that flow through human review to publication.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
