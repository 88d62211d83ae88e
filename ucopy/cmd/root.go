// Package cmd provides the command-line interface for ucopy.
package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var envFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ucopy",
	Short: "ucopy runs user-to-kernel copy scenarios.",
	Long: `ucopy builds user address spaces from a scenario script, copies ` +
		`bytes and strings out of them through their page tables, and ` +
		`reports the outcome of every copy together with the call counters.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "",
		"environment file to read the configuration from (default .env)")
}

func mustLoadConfig(cmd *cobra.Command) Config {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}

	config, err := LoadConfig(files...)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if cmd.Flags().Changed("log2-page-size") {
		config.Log2PageSize, _ = cmd.Flags().GetUint64("log2-page-size")
	}

	if cmd.Flags().Changed("memory") {
		config.MemoryCapacity, _ = cmd.Flags().GetUint64("memory")
	}

	if cmd.Flags().Changed("record") {
		config.RecordDB, _ = cmd.Flags().GetString("record")
	}

	if cmd.Flags().Changed("port") {
		config.MonitorPort, _ = cmd.Flags().GetInt("port")
	}

	if err := config.Validate(); err != nil {
		log.Fatalf("Error: %v", err)
	}

	return config
}

func addMachineFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("layout", "l", "", "scenario script to run")
	cmd.Flags().Uint64("log2-page-size", 12, "log2 of the page size")
	cmd.Flags().Uint64("memory", 1<<24, "physical memory capacity in bytes")
	cmd.Flags().String("record", "",
		"record every copy call into this SQLite database (without suffix)")
	_ = cmd.MarkFlagRequired("layout")
}
