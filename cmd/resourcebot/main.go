// Resourcebot is a moderated course-resource sharing bot for Telegram.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resourcebot",
	Short: "Moderated course-resource sharing bot for Telegram",
	Long: `Resourcebot lets students share course resources through Telegram.
Users submit files tagged with a course code, a single administrator approves
or rejects them, and approved files become retrievable by course code.
Any user can request deletion of an approved resource, subject to admin review.`,
	RunE:          runBot, // Default to running the bot.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(runCmd, repairCmd, versionCmd)
	_ = godotenv.Load()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
