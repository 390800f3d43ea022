package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hotradar",
		Short: "Aggregate, dedupe and rank trending topics across platforms",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(onceCmd())
	root.AddCommand(showCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())

	return root
}

func onceCmd() *cobra.Command {
	var (
		notify bool
		topN   int
	)

	cmd := &cobra.Command{
		Use:   "once",
		Short: "Fetch, rank and archive a single run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(notify, topN)
		},
	}

	cmd.Flags().BoolVar(&notify, "notify", false, "push the result to configured notifiers")
	cmd.Flags().IntVar(&topN, "top", 0, "override ranked list size (default: from config)")
	return cmd
}

func showCmd() *cobra.Command {
	var (
		jsonOutput bool
		runID      string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the ranked list of an archived run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(jsonOutput, runID)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().StringVar(&runID, "run", "", "run id (default: latest)")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server over the run archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon with scheduler and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
