package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/codership/galera"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "galera-probe",
	Short: "Exercise round robin routing across a Galera cluster",
	Long: `galera-probe opens connections through the galera routing driver and reports
which node each one was routed to.

Settings are read from an optional YAML file and then from the environment:

  GALERA_HOSTS        comma-separated list of cluster nodes
  GALERA_DBMS_DRIVER  delegate driver: mysql, postgres or sqlite3
  GALERA_DSN          templated DSN, e.g. galera:root@tcp(<galera-host>:3306)/test

Examples:
  galera-probe hosts --count 6
  GALERA_HOSTS=db1,db2 galera-probe probe --driver mysql --count 4`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(hostsCmd)
	rootCmd.AddCommand(probeCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

// loadConfig reads the config file named by --config, then the environment
func loadConfig(cmd *cobra.Command) (*galera.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := galera.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *galera.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
