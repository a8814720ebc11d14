package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	envFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "voicetime",
	Short: "voicetime - Discord voice-chat time tracking bot",
	Long: `voicetime tracks how long members of a Discord server spend in voice
channels, persists completed sessions, supports manual time adjustments and
answers per-user and leaderboard queries over arbitrary date ranges.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to the serve command when no subcommand is provided
		return runServe(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect to Discord and start tracking",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&envFile, "env", "e", "", "Path to a dotenv file (default: .env in the working directory)")
	rootCmd.AddCommand(serveCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
