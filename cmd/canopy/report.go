package main

import (
	"fmt"
	"os"

	"github.com/aretw0/canopy/internal/cli"
	"github.com/spf13/cobra"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Survey the workspace and write the project report pane",
	Long: `Runs one survey pass over the workspace: every project is queried for
its attributes and reported as a block in the output pane. With --watch the
pass repeats whenever the workspace changes.`,
	Run: func(cmd *cobra.Command, args []string) {
		workspacePath, _ := cmd.Flags().GetString("dir")
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			workspacePath = args[0]
		}

		opts := cli.RunOptions{WorkspacePath: workspacePath}
		opts.Pane, _ = cmd.Flags().GetString("pane")
		opts.Watch, _ = cmd.Flags().GetBool("watch")
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.Quiet, _ = cmd.Flags().GetBool("quiet")
		opts.LogLevel, _ = cmd.Flags().GetString("log-level")
		opts.RedisAddr, _ = cmd.Flags().GetString("redis")
		opts.RedisPassword, _ = cmd.Flags().GetString("redis-password")
		opts.RedisDB, _ = cmd.Flags().GetInt("redis-db")
		opts.Lock, _ = cmd.Flags().GetBool("lock")

		if err := cli.Execute(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("pane", "", "Name of the output pane")
	reportCmd.Flags().BoolP("watch", "w", false, "Re-survey whenever the workspace changes")
	reportCmd.Flags().Bool("debug", false, "Enable debug logging")
	reportCmd.Flags().BoolP("quiet", "q", false, "Suppress system messages")
	reportCmd.Flags().String("log-level", "", "Log level: debug, info, warn or error")
	reportCmd.Flags().String("redis", "", "Redis address for a shared output sink (host:port)")
	reportCmd.Flags().String("redis-password", "", "Redis password")
	reportCmd.Flags().Int("redis-db", 0, "Redis database number")
	reportCmd.Flags().Bool("lock", false, "Guard the pass with a distributed lock (requires --redis)")

	// Make 'report' the default when no command is provided.
	rootCmd.Run = reportCmd.Run
}
