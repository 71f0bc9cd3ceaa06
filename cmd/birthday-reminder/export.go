package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tartampluch/birthday-reminder/internal/config"
)

func newExportCommand(cc *commandContext) *cobra.Command {
	var output, alarm string

	cmd := &cobra.Command{
		Use:   config.CmdExportUse,
		Short: config.CmdExportShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(cmd.Context(), cc)
			if err != nil {
				return err
			}
			if alarm == "" {
				alarm = cc.settings.Server.Alarm
			}

			data, err := cc.calendarBuilder(cc.catalog()).Build(records, alarm)
			if err != nil {
				return err
			}

			if output == "" {
				if _, err := cmd.OutOrStdout().Write(data); err != nil {
					return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
				}
				return nil
			}

			if err := os.MkdirAll(filepath.Dir(output), config.DirPermUserRWX); err != nil {
				return fmt.Errorf("%s: %w", config.ErrCreateDir, err)
			}
			if err := os.WriteFile(output, data, config.FilePermUserRW); err != nil {
				return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
			}
			cc.logger.Info(config.MsgExportWritten,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyPath, output,
				config.LogKeySizeBytes, len(data),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, config.FlagOutput, "o", "", config.FlagDescOutput)
	cmd.Flags().StringVar(&alarm, config.FlagAlarm, "", config.FlagDescAlarm)
	return stderrLogged(cmd)
}
