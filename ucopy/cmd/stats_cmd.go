package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/ucopy/usercopy"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Run a scenario script and print only the copy counters",
	Long: `stats runs the scenario script given by --layout and prints the ` +
		`number of copyin and copyinstr calls it made. The counters live ` +
		`in this process only, so the script is what fills them.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.SilenceUsage = true
		config := mustLoadConfig(cmd)

		layout, _ := cmd.Flags().GetString("layout")
		mustRunLayout(config, layout)

		buf := make([]byte, 128)
		n := usercopy.FormatStats(buf)
		fmt.Print(string(buf[:n]))

		atexit.Exit(0)
	},
}

func init() {
	addMachineFlags(statsCmd)
	rootCmd.AddCommand(statsCmd)
}
