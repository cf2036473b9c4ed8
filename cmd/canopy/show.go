package main

import (
	"fmt"
	"os"

	"github.com/aretw0/canopy/internal/cli"
	"github.com/spf13/cobra"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show [pane]",
	Short: "Print the contents of a report pane",
	Long: `Reads a pane from the shared Redis sink and prints it.
Without an argument the standard report pane is shown.`,
	Run: func(cmd *cobra.Command, args []string) {
		workspacePath, _ := cmd.Flags().GetString("dir")

		opts := cli.RunOptions{WorkspacePath: workspacePath}
		if len(args) > 0 {
			opts.Pane = args[0]
		}
		opts.RedisAddr, _ = cmd.Flags().GetString("redis")
		opts.RedisPassword, _ = cmd.Flags().GetString("redis-password")
		opts.RedisDB, _ = cmd.Flags().GetInt("redis-db")

		if err := cli.RunShow(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().String("redis", "", "Redis address of the shared sink (host:port)")
	showCmd.Flags().String("redis-password", "", "Redis password")
	showCmd.Flags().Int("redis-db", 0, "Redis database number")
}
