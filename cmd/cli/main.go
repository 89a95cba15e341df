package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/saccopay/internal/infrastructure/auth"
	"github.com/iho/saccopay/internal/infrastructure/config"
	"github.com/iho/saccopay/internal/infrastructure/logger"
	"github.com/iho/saccopay/internal/infrastructure/postgres"
)

// tokenEnv supplies the bearer token when --token is not given.
const tokenEnv = "SACCOPAY_TOKEN"

// errInconsistent makes the process exit non-zero when drift is reported.
var errInconsistent = errors.New("ledger is inconsistent")

type options struct {
	baseURL string
	token   string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "saccopay-cli",
		Short:         "SaccoPay CLI tool",
		Long:          `A command line interface for operating the SaccoPay API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the SaccoPay API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", "", "Bearer token (defaults to $"+tokenEnv+")")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}
	ledgerCmd.AddCommand(consistencyCmd(opts))

	paymentCmd := &cobra.Command{
		Use:   "payment",
		Short: "Payment operations",
	}
	paymentCmd.AddCommand(paymentStatusCmd(opts))

	rootCmd.AddCommand(ledgerCmd, paymentCmd, hashPasswordCmd(), migrateCmd())

	return rootCmd
}

func consistencyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check that repayments match loan balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := opts.get(cmd.Context(), "/api/v1/ledger/consistency")
			if err != nil {
				return err
			}

			var report struct {
				Status        string `json:"status"`
				LoansChecked  int    `json:"loans_checked"`
				Consistent    bool   `json:"consistent"`
				Discrepancies []struct {
					LoanID string `json:"loan_id"`
					Reason string `json:"reason"`
				} `json:"discrepancies"`
			}

			if status != http.StatusOK && status != http.StatusConflict {
				return fmt.Errorf("consistency check failed (status %d): %s", status, strings.TrimSpace(string(body)))
			}
			if err := json.Unmarshal(body, &report); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Loans checked: %d\n", report.LoansChecked)
			if report.Consistent {
				fmt.Fprintln(out, "Consistency check PASSED")
				return nil
			}

			fmt.Fprintln(out, "Consistency check FAILED")
			for _, d := range report.Discrepancies {
				fmt.Fprintf(out, "  loan %s: %s\n", d.LoanID, d.Reason)
			}
			return errInconsistent
		},
	}
}

func paymentStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status <checkout-request-id>",
		Short: "Show the status of an STK push payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := opts.get(cmd.Context(), "/api/v1/payments/"+url.PathEscape(args[0])+"/status")
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("status query failed (status %d): %s", status, strings.TrimSpace(string(body)))
			}

			var resp struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.Status)
			return nil
		},
	}
}

// newHasher is replaced in tests to keep them fast.
var newHasher = func(cost int) interface{ Hash(string) (string, error) } {
	return auth.NewBcryptHasher(cost)
}

func hashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := newHasher(cost).Hash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 10, "bcrypt cost")

	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations using DATABASE_URL and MIGRATIONS_PATH",
	}

	run := func(apply func(databaseURL, path string, log zerolog.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.NewWithWriter(logger.Config{Level: cfg.LogLevel, Format: "console"}, cmd.ErrOrStderr())
			return apply(cfg.DatabaseURL, cfg.MigrationsPath, log)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  run(postgres.RunMigrations),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			Args:  cobra.NoArgs,
			RunE:  run(postgres.RunMigrationsDown),
		},
	)

	return cmd
}

func (o *options) get(ctx context.Context, path string) (int, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(o.baseURL, "/")+path, nil)
	if err != nil {
		return 0, nil, err
	}

	token := o.token
	if token == "" {
		token = os.Getenv(tokenEnv)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("error reading response: %w", err)
	}

	return resp.StatusCode, body, nil
}
