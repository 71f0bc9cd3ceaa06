package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/notify"
	"github.com/tartampluch/birthday-reminder/internal/reminder"
)

func newTestNotifyCommand(cc *commandContext) *cobra.Command {
	return stderrLogged(&cobra.Command{
		Use:   config.CmdTestNotifyUse,
		Short: config.CmdTestNotifyShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := cc.notifier()
			if _, ok := n.(notify.NoopNotifier); ok {
				fmt.Fprintln(cmd.OutOrStdout(), config.MsgNotifierNoop)
				return nil
			}
			svc := &reminder.Service{
				Notifier: n,
				Catalog:  cc.catalog(),
				Logger:   cc.logger,
			}
			if err := svc.TestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("%s: %w", config.ErrTestNotification, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.MsgTestSent)
			return nil
		},
	})
}
