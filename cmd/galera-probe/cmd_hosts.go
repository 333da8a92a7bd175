package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codership/galera"
)

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "Show how DSNs would be rewritten, without connecting",
	RunE:  runHosts,
}

func init() {
	hostsCmd.Flags().Int("count", 0, "Number of connects to simulate (default: one per host)")
	hostsCmd.Flags().String("dsn", "", "Templated DSN (overrides GALERA_DSN)")
}

func runHosts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if dsn, _ := cmd.Flags().GetString("dsn"); dsn != "" {
		cfg.DSN = dsn
	}

	hosts := galera.ParseHosts(cfg.Hosts)
	tmpl := cfg.Template()
	out := cmd.OutOrStdout()

	if !tmpl.Routed(cfg.DSN) {
		return fmt.Errorf("DSN %q does not start with %q", cfg.DSN, tmpl.Scheme)
	}

	count, _ := cmd.Flags().GetInt("count")
	if count <= 0 {
		count = hosts.Len()
	}
	if hosts.Len() == 0 {
		fmt.Fprintf(out, "no hosts configured; passthrough: %s\n", tmpl.Passthrough(cfg.DSN))
		return nil
	}

	for i := 0; i < count; i++ {
		host, _ := hosts.Next()
		fmt.Fprintf(out, "%d\t%s\t%s\n", i+1, host, tmpl.Resolve(cfg.DSN, host))
	}
	return nil
}
