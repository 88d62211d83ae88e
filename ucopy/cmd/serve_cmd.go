package cmd

import (
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/ucopy/monitoring"
	"github.com/sarchlab/ucopy/usercopy"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a scenario script and serve its state over HTTP",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.SilenceUsage = true
		config := mustLoadConfig(cmd)

		layout, _ := cmd.Flags().GetString("layout")
		m, results := mustRunLayout(config, layout)
		printResults(os.Stdout, results)

		monitor := monitoring.NewMonitor().WithPortNumber(config.MonitorPort)
		monitor.RegisterStats(usercopy.DefaultStats())
		monitor.RegisterPageTable(m.PageTable)
		for _, s := range m.Spaces() {
			monitor.RegisterSpace(s)
		}

		url := monitor.StartServer()

		if open, _ := cmd.Flags().GetBool("open"); open {
			if err := monitor.OpenInBrowser(url); err != nil {
				log.Printf("Cannot open browser: %v", err)
			}
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		<-sig

		atexit.Exit(0)
	},
}

func init() {
	addMachineFlags(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "port of the monitoring server")
	serveCmd.Flags().Bool("open", false, "open the stats page in a browser")
	rootCmd.AddCommand(serveCmd)
}
