package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/codership/galera"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Open connections through the routing driver and run a query on each",
	RunE:  runProbe,
}

func init() {
	probeCmd.Flags().String("driver", "", "Delegate driver name (overrides GALERA_DBMS_DRIVER)")
	probeCmd.Flags().String("dsn", "", "Templated DSN (overrides GALERA_DSN)")
	probeCmd.Flags().Int("count", 4, "Number of connections to open")
	probeCmd.Flags().String("query", "SELECT 1", "Query to run on every connection")
	probeCmd.Flags().Duration("timeout", 5*time.Second, "Timeout for each connection")
	probeCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address and wait for interrupt")
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("driver"); v != "" {
		cfg.Driver = v
	}
	if v, _ := cmd.Flags().GetString("dsn"); v != "" {
		cfg.DSN = v
	}
	count, _ := cmd.Flags().GetInt("count")
	query, _ := cmd.Flags().GetString("query")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	log := newLogger(cfg)
	reg := prometheus.NewRegistry()

	d, err := galera.Install(cfg,
		galera.WithMetrics(galera.NewMetrics(reg)),
		galera.WithLog(func(msg string) { log.Debug().Msg(msg) }),
	)
	if err != nil {
		return err
	}
	if !d.Accepts(cfg.DSN) {
		return fmt.Errorf("DSN is not accepted by %s driver", cfg.Driver)
	}

	db, err := sqlx.Open(cfg.Name, cfg.DSN)
	if err != nil {
		return err
	}
	defer db.Close()
	// every probe gets a fresh physical connection, and so a fresh host
	db.SetMaxIdleConns(0)

	var failed int
	for i := 0; i < count; i++ {
		if err := probeOnce(cmd.Context(), db, d.Hosts(), query, timeout, log.With().Int("probe", i+1).Logger()); err != nil {
			failed++
		}
	}
	for host, n := range d.Hosts().Snapshot() {
		log.Warn().Str("host", host).Int("open", n).Msg("connections still open")
	}

	if metricsAddr != "" {
		log.Info().Str("addr", metricsAddr).Msg("serving metrics")
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		if err := http.ListenAndServe(metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d probes failed", failed, count)
	}
	return nil
}

func probeOnce(ctx context.Context, db *sqlx.DB, hosts *galera.Hosts, query string, timeout time.Duration, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	conn, err := db.Connx(ctx)
	if err != nil {
		log.Error().Err(err).Msg("connect failed")
		return err
	}
	defer conn.Close()

	// probes run one at a time, so the only open connection is this one
	for host := range hosts.Snapshot() {
		log = log.With().Str("host", host).Logger()
	}

	var result []string
	if err := conn.SelectContext(ctx, &result, query); err != nil {
		log.Error().Err(err).Msg("query failed")
		return err
	}
	log.Info().Dur("elapsed", time.Since(start)).Strs("result", result).Msg("probe ok")
	return nil
}
