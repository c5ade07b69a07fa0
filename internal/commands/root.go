package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bernardxu123/unicom-calc/internal/config"
	"github.com/Bernardxu123/unicom-calc/internal/ledger"
	"github.com/Bernardxu123/unicom-calc/internal/logging"
	"github.com/Bernardxu123/unicom-calc/internal/persist"
	"github.com/Bernardxu123/unicom-calc/internal/session"
	"github.com/Bernardxu123/unicom-calc/internal/syncclient"
)

// app is what every subcommand works on: the local ledger (auto-saved to the
// state file), the session and the sync client.
type app struct {
	cfg     *config.Config
	backend *persist.GormBackend
	ledger  *ledger.Store
	session *session.Store
	sync    *syncclient.Client
}

func openApp(ctx context.Context, configPath, statePath string) (*app, error) {
	cfg, err := config.Read(configPath)
	if err != nil {
		return nil, err
	}
	logging.Setup(os.Stderr, cfg.Log.Level)

	if statePath == "" {
		statePath = cfg.Client.StatePath
	}
	backend, err := persist.OpenLocal(statePath)
	if err != nil {
		return nil, fmt.Errorf("open state %s: %w", statePath, err)
	}

	p := persist.New(backend)
	store := ledger.NewStore(p.Load(ctx))
	p.Attach(ctx, store)

	var tokens session.TokenStore = &stateTokenStore{backend: backend}
	if cfg.Client.Keyring {
		tokens = session.NewKeyringTokenStore()
	}
	sess := session.New(tokens)
	sess.Restore()

	timeout := time.Duration(cfg.Client.TimeoutSeconds) * time.Second
	return &app{
		cfg:     cfg,
		backend: backend,
		ledger:  store,
		session: sess,
		sync:    syncclient.New(cfg.Client.BaseURL, timeout, sess, store),
	}, nil
}

func (a *app) close() error {
	if a == nil || a.backend == nil {
		return nil
	}
	return a.backend.Close()
}

// NewRootCommand creates the cardctl command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var (
		configPath string
		statePath  string
		a          = new(app)
	)

	rootCmd := &cobra.Command{
		Use:   "cardctl",
		Short: "Track China Unicom card plans, rebates and monthly net cost",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opened, err := openApp(cmd.Context(), configPath, statePath)
			if err != nil {
				return err
			}
			*a = *opened
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "local state file (default client.state_path)")

	rootCmd.AddCommand(
		newSummaryCommand(a),
		newListCommand(a),
		newPresetsCommand(a),
		newCardCommand(a),
		newItemCommand(a),
		newPresetCommand(a),
		newMonthCommand(a),
		newVipCommand(a),
		newResetCommand(a),
		newExportCommand(a),
		newImportCommand(a),
		newRegisterCommand(a),
		newLoginCommand(a),
		newLogoutCommand(a),
		newPushCommand(a),
		newPullCommand(a),
		newRankCommand(a),
	)

	return rootCmd
}
