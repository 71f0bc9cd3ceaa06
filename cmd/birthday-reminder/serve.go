package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/server"
)

func newServeCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdServeUse,
		Short: config.CmdServeShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			srv := server.NewCalendarServer(cc.settings.Server.Port, cc.logger)
			builder := cc.calendarBuilder(cc.catalog())
			alarm := cc.settings.Server.Alarm

			go srv.Refresh(ctx, cc.settings.RefreshInterval(), func(ctx context.Context) ([]byte, error) {
				records, err := loadRecords(ctx, cc)
				if err != nil {
					return nil, err
				}
				return builder.Build(records, alarm)
			})

			// SIGHUP rebuilds the calendar after the birthday file was edited.
			hup := make(chan os.Signal, config.ChannelBufferSize)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case <-hup:
						srv.Trigger()
					}
				}
			}()

			return srv.Start(ctx)
		},
	}
}
