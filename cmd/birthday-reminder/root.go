package main

import (
	"github.com/spf13/cobra"

	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/ledger"
	"github.com/tartampluch/birthday-reminder/internal/reminder"
)

func newRootCommand(cc *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           config.AppCommand,
		Short:         config.CmdRootShort,
		Long:          config.CmdRootLong,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cc.versionFlag {
				return nil
			}
			return cc.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cc.versionFlag {
				printVersion(cmd.OutOrStdout())
				return nil
			}
			return runDaily(cmd, cc)
		},
	}

	rootCmd.Flags().BoolVar(&cc.versionFlag, config.FlagVersion, false, config.FlagDescVersion)
	rootCmd.PersistentFlags().BoolVar(&cc.debugFlag, config.FlagDebug, false, config.FlagDescDebug)
	rootCmd.PersistentFlags().StringVarP(&cc.configFlag, config.FlagConfig, "c", "", config.FlagDescConfig)

	rootCmd.AddCommand(newListCommand(cc))
	rootCmd.AddCommand(newExportCommand(cc))
	rootCmd.AddCommand(newServeCommand(cc))
	rootCmd.AddCommand(newTestNotifyCommand(cc))

	return rootCmd
}

// runDaily is the cron entry point. Only configuration errors fail the
// process; ledger and delivery problems are logged and the run goes on.
func runDaily(cmd *cobra.Command, cc *commandContext) error {
	ctx := cmd.Context()
	log := cc.logger.With(config.LogKeyComponent, config.CompMain)
	s := cc.settings

	lock, ok, err := ledger.TryLock(s.Ledger.Path)
	switch {
	case err != nil:
		log.Error(config.ErrLockAcquire, config.LogKeyPath, s.Ledger.Path, config.LogKeyError, err)
	case !ok:
		log.Warn(config.MsgRunLocked, config.LogKeyPath, s.Ledger.Path)
		return nil
	default:
		defer func() { _ = lock.Unlock() }()
	}

	led, err := ledger.Open(ctx, s.Ledger.Backend, s.Ledger.Path, cc.logger)
	if err != nil {
		log.Error(config.MsgLedgerFallback, config.LogKeyBackend, s.Ledger.Backend, config.LogKeyError, err)
		led = ledger.NewDocumentLedger(ledger.NewFileStore(s.Ledger.Path), cc.logger)
	}
	defer func() { _ = led.Close() }()

	svc := &reminder.Service{
		Source:        cc.source(),
		Ledger:        led,
		Notifier:      cc.notifier(),
		Clock:         cc.clock,
		Catalog:       cc.catalog(),
		Thresholds:    s.ThresholdMap(),
		RetentionDays: s.Ledger.RetentionDays,
		Logger:        cc.logger,
	}

	if _, err := svc.Run(ctx); err != nil {
		return err
	}
	log.Info(config.MsgAppStop)
	return nil
}
