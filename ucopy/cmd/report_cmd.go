package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/sarchlab/ucopy/datarecording"
)

var reportCmd = &cobra.Command{
	Use:   "report [database.sqlite3]",
	Short: "List the copy calls stored in a recording",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SilenceUsage = true

		reader := datarecording.NewReader(args[0])
		defer reader.Close()

		reader.MapTable(datarecording.CopyTableName, datarecording.CopyEntry{})

		params := datarecording.QueryParams{}
		if failed, _ := cmd.Flags().GetBool("failed"); failed {
			params.Where = "Failed = ?"
			params.Args = []any{true}
		}
		params.Limit, _ = cmd.Flags().GetInt("limit")

		results, total, err := reader.Query(context.Background(),
			datarecording.CopyTableName, params)
		if err != nil {
			log.Fatalf("Error reading %s: %v", args[0], err)
		}

		for _, r := range results {
			e := r.(*datarecording.CopyEntry)
			fmt.Printf("%s pid %d %s %s %s copied %d %s\n",
				e.ID, e.PID, e.Kind, e.SrcVA, e.Length, e.Copied, e.Error)
		}

		fmt.Printf("%d of %d calls shown\n", len(results), total)
	},
}

func init() {
	reportCmd.Flags().Bool("failed", false, "show failed calls only")
	reportCmd.Flags().Int("limit", 0, "maximum number of calls to show")
	rootCmd.AddCommand(reportCmd)
}
