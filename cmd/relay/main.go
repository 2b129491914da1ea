package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"payment-terminal-bridge/config"
	"payment-terminal-bridge/internal/adapter/reader"
	pgStorage "payment-terminal-bridge/internal/adapter/storage/postgres"
	"payment-terminal-bridge/internal/relay"
	"payment-terminal-bridge/internal/service"
	"payment-terminal-bridge/pkg/logger"
	"payment-terminal-bridge/pkg/shutdownqueue"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Execute bridge commands against readers on the local network",
	Long: `The relay runs next to reader hardware the bridge cannot reach. It claims
queued commands for the devices in its manifest, journals each one before it
reaches the reader, and writes the outcome back to the bridge.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll the command queue until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runRelay,
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List journaled commands not yet reported to the bridge",
	Args:  cobra.NoArgs,
	RunE:  listJournal,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default ./config.yaml)")
	runCmd.Flags().String("devices", "", "Device manifest (overrides relay.devices_path)")
	runCmd.Flags().Duration("exec-timeout", 0, "Upper bound for one reader exchange (default reader.http_timeout)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(journalCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runRelay(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty, "relay")

	devicesPath, _ := cmd.Flags().GetString("devices")
	if devicesPath == "" {
		devicesPath = cfg.Relay.DevicesPath
	}
	manifest, err := relay.LoadManifest(devicesPath)
	if err != nil {
		return err
	}
	relayID := manifest.RelayID
	if relayID == "" {
		relayID = cfg.Relay.ID
	}
	if relayID == "" {
		return errors.New("relay id missing: set relay_id in the manifest or relay.id in config")
	}

	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		return fmt.Errorf("encryption service: %w", err)
	}
	readers, err := manifest.Readers(encSvc)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue := shutdownqueue.New()

	pool, err := pgStorage.NewPool(ctx, cfg.Database, "relay", log)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	queue.Add("postgres", func(context.Context) error { pool.Close(); return nil })

	journal, err := relay.OpenJournal(cfg.Relay.JournalPath)
	if err != nil {
		_ = queue.Shutdown(context.Background())
		return err
	}
	queue.Add("journal", func(context.Context) error { return journal.Close() })

	execTimeout, _ := cmd.Flags().GetDuration("exec-timeout")
	if execTimeout <= 0 {
		execTimeout = cfg.Reader.HTTPTimeout
	}

	agent := relay.NewAgent(
		pgStorage.NewRelayCommandRepo(pool),
		journal,
		reader.NewDirectBackend(&http.Client{Timeout: execTimeout}, encSvc),
		readers,
		relay.AgentConfig{
			ID:           relayID,
			PollInterval: cfg.Relay.PollInterval,
			ExecTimeout:  execTimeout,
		},
		log,
	)

	log.Info().Str("relay_id", relayID).Int("devices", len(readers)).Str("journal", cfg.Relay.JournalPath).Msg("Starting relay")
	runErr := agent.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := queue.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown finished with errors")
	}
	log.Info().Msg("Relay stopped")
	return runErr
}

func listJournal(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	journal, err := relay.OpenJournal(cfg.Relay.JournalPath)
	if err != nil {
		return err
	}
	defer journal.Close()

	entries, err := journal.Pending()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "journal is empty")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMMAND\tDEVICE\tOP\tSEQ\tSTARTED\tOUTCOME")
	for _, e := range entries {
		outcome := "interrupted"
		if e.Executed() {
			outcome = string(e.Outcome)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			e.CommandID, e.Device, e.Type, e.Sequence, e.StartedAt.Format(time.RFC3339), outcome)
	}
	return w.Flush()
}
