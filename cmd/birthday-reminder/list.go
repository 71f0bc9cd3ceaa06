package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/engine"
)

func newListCommand(cc *commandContext) *cobra.Command {
	var within int

	cmd := &cobra.Command{
		Use:   config.CmdListUse,
		Short: config.CmdListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(cmd.Context(), cc)
			if err != nil {
				return err
			}

			entries := engine.Upcoming(engine.StartOfDay(cc.today()), records, within, cc.logger)
			cat := cc.catalog()

			header := table.Row{
				cat.Msg(config.TKeyColName, nil),
				cat.Msg(config.TKeyColDate, nil),
				cat.Msg(config.TKeyColDays, nil),
				cat.Msg(config.TKeyColImportance, nil),
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, upcomingTable(header, entries, isTerminal(out)))
			return nil
		},
	}

	cmd.Flags().IntVar(&within, config.FlagDays, 0, config.FlagDescDays)
	return stderrLogged(cmd)
}

// loadRecords reads the birthday file for the read-only commands. A missing
// file is an empty list, like in the daily run.
func loadRecords(ctx context.Context, cc *commandContext) ([]engine.Record, error) {
	records, _, err := cc.source().Load(ctx)
	if err != nil && !errors.Is(err, engine.ErrSourceMissing) {
		return nil, err
	}
	if err != nil {
		cc.logger.Warn(config.ErrSourceMissing, config.LogKeyComponent, config.CompSource, config.LogKeyPath, cc.settings.Source.Path)
	}
	return records, nil
}
