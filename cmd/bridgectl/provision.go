package main

import (
	"fmt"
	"time"

	"payment-terminal-bridge/internal/adapter/reader"
	pgStorage "payment-terminal-bridge/internal/adapter/storage/postgres"
	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"
	"payment-terminal-bridge/internal/service"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(clientCmd, readerCmd, bindingCmd)
	clientCmd.AddCommand(clientCreateCmd)
	readerCmd.AddCommand(readerAddCmd, readerSealCmd)
	bindingCmd.AddCommand(bindingSetCmd)

	clientCreateCmd.Flags().String("role", string(domain.RoleTerminal), "terminal or operator")
	clientCreateCmd.Flags().String("terminal", "", "Terminal the client is confined to (terminal role)")
	clientCreateCmd.Flags().String("secret", "", "Client secret")
	_ = clientCreateCmd.MarkFlagRequired("secret")

	readerAddCmd.Flags().String("name", "", "Display name")
	readerAddCmd.Flags().String("address", "", "host:port of the reader's local API")
	readerAddCmd.Flags().String("serial", "", "Serial number reported by the device")
	readerAddCmd.Flags().String("credentials", "", "user:password for the reader's API, stored encrypted")
	_ = readerAddCmd.MarkFlagRequired("address")

	bindingSetCmd.Flags().String("primary", "", "Primary reader id")
	bindingSetCmd.Flags().String("backup", "", "Backup reader id")
	bindingSetCmd.Flags().String("backend", "", "relay, direct or simulator (default reader.default_backend)")
	bindingSetCmd.Flags().Duration("failover-timeout", domain.DefaultFailoverTimeout, "Connectivity timeout before a swap is offered")
	_ = bindingSetCmd.MarkFlagRequired("primary")
}

var clientCmd = &cobra.Command{Use: "client", Short: "Manage API clients"}

var clientCreateCmd = &cobra.Command{
	Use:   "create CLIENT_ID",
	Short: "Provision an API client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		pool, err := e.pool(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		role, _ := cmd.Flags().GetString("role")
		secret, _ := cmd.Flags().GetString("secret")
		terminal, _ := cmd.Flags().GetString("terminal")
		req := ports.CreateClientRequest{ID: args[0], Secret: secret, Role: domain.ClientRole(role)}
		if terminal != "" {
			req.TerminalID = &terminal
		}

		authSvc := service.NewAuthService(
			pgStorage.NewClientRepo(pool),
			service.NewArgon2HashService(),
			service.NewJWTTokenService(e.cfg.JWT.Secret, e.cfg.JWT.Expiry, e.cfg.JWT.Issuer),
		)
		client, err := authSvc.CreateClient(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "client %s created (role %s)\n", client.ID, client.Role)
		return nil
	},
}

var readerCmd = &cobra.Command{Use: "reader", Short: "Manage the reader registry"}

var readerAddCmd = &cobra.Command{
	Use:   "add READER_ID",
	Short: "Register a reader or update its registry entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}

		rd := &domain.Reader{ID: args[0]}
		rd.Name, _ = cmd.Flags().GetString("name")
		rd.Address, _ = cmd.Flags().GetString("address")
		rd.SerialNumber, _ = cmd.Flags().GetString("serial")
		if creds, _ := cmd.Flags().GetString("credentials"); creds != "" {
			if rd.CredentialsEnc, err = seal(e, creds); err != nil {
				return err
			}
		}

		pool, err := e.pool(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		stored, err := pgStorage.NewReaderRepo(pool).Register(cmd.Context(), rd)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reader %s registered at %s\n", stored.ID, stored.Address)
		return nil
	},
}

var readerSealCmd = &cobra.Command{
	Use:   "seal USER:PASSWORD",
	Short: "Encrypt reader credentials for a relay device manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		sealed, err := seal(e, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), sealed)
		return nil
	},
}

func seal(e *env, creds string) (string, error) {
	encSvc, err := service.NewAESEncryptionService(e.cfg.AES.Key)
	if err != nil {
		return "", fmt.Errorf("encryption service: %w", err)
	}
	return encSvc.Encrypt(creds)
}

var bindingCmd = &cobra.Command{Use: "binding", Short: "Manage terminal bindings"}

var bindingSetCmd = &cobra.Command{
	Use:   "set TERMINAL_ID",
	Short: "Bind a terminal to a primary and optional backup reader",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		pool, err := e.pool(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		b := &domain.TerminalBinding{TerminalID: args[0]}
		b.PrimaryReaderID, _ = cmd.Flags().GetString("primary")
		if backup, _ := cmd.Flags().GetString("backup"); backup != "" {
			b.BackupReaderID = &backup
		}
		backend, _ := cmd.Flags().GetString("backend")
		b.Backend = domain.BackendKind(backend)
		b.FailoverTimeout, _ = cmd.Flags().GetDuration("failover-timeout")

		bindings := service.NewBindingService(
			pgStorage.NewBindingRepo(pool),
			pgStorage.NewReaderRepo(pool),
			reader.NewGateway(e.log),
			domain.BackendKind(e.cfg.Reader.DefaultBackend),
			e.cfg.Reader.BindingCacheTTL,
			e.log,
		)
		stored, err := bindings.UpdateBinding(cmd.Context(), b)
		if err != nil {
			return err
		}

		backupID := "-"
		if stored.HasBackup() {
			backupID = *stored.BackupReaderID
		}
		fmt.Fprintf(cmd.OutOrStdout(), "terminal %s -> primary %s, backup %s, backend %s, failover %s (version %d)\n",
			stored.TerminalID, stored.PrimaryReaderID, backupID, stored.Backend,
			stored.Timeout().Round(time.Millisecond), stored.Version)
		return nil
	},
}
