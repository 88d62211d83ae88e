package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/ucopy/datarecording"
	"github.com/sarchlab/ucopy/scenario"
	"github.com/sarchlab/ucopy/usercopy"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario script and print the outcome of every copy",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.SilenceUsage = true
		config := mustLoadConfig(cmd)

		layout, _ := cmd.Flags().GetString("layout")
		_, results := mustRunLayout(config, layout)

		printResults(os.Stdout, results)
		fmt.Print(usercopy.DefaultStats().String())

		atexit.Exit(0)
	},
}

func init() {
	addMachineFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func mustRunLayout(
	config Config,
	layout string,
) (*scenario.Machine, []scenario.Result) {
	f, err := os.Open(layout)
	if err != nil {
		log.Fatalf("Error opening layout: %v", err)
	}
	defer f.Close()

	script, err := scenario.Parse(f)
	if err != nil {
		log.Fatalf("Error parsing %s: %v", layout, err)
	}

	m := scenario.NewMachine(config.Log2PageSize, config.MemoryCapacity,
		usercopy.DefaultStats())

	if config.RecordDB != "" {
		recorder := datarecording.New(config.RecordDB)
		m.Copier.AcceptHook(datarecording.NewCopyHook(recorder))
	}

	results, err := m.Run(script)
	if err != nil {
		log.Fatalf("Error running %s: %v", layout, err)
	}

	return m, results
}

func printResults(w io.Writer, results []scenario.Result) {
	for _, r := range results {
		fmt.Fprintf(w, "%d: pid %d %s 0x%x 0x%x: %s",
			r.Line, r.PID, r.Kind, r.SrcVA, r.Len, scenario.Cause(r.Err))

		if r.Err == nil {
			fmt.Fprintf(w, " %q", r.Data)
		}

		fmt.Fprintln(w)
	}
}
