package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "extractctl",
	Short: "FOSS API extraction CLI",
	Long: `extractctl runs document extractions directly against the configured
object store, printing the same results the batch API would return. It is
meant for operators debugging individual documents or re-running extractions
outside the request path.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(classifyCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
