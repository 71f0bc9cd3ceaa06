// Package reminder runs the daily notification job: it loads the birthday
// list, posts the monthly digest on the first day of the month and sends the
// per-name reminders that are due, consulting the ledger so nothing is sent
// twice.
package reminder

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/engine"
	"github.com/tartampluch/birthday-reminder/internal/ledger"
	"github.com/tartampluch/birthday-reminder/internal/notify"
)

// Summary counts what happened during one run.
type Summary struct {
	Loaded     int
	Skipped    int
	Selected   int
	Sent       int
	Failed     int
	Duplicates int
	DigestSent bool
	Pruned     int
}

// Service wires the job together. All fields except Logger and
// RetentionDays are required.
type Service struct {
	Source        engine.Source
	Ledger        ledger.Ledger
	Notifier      notify.Notifier
	Clock         engine.Clock
	Catalog       *Catalog
	Thresholds    map[int][]int
	RetentionDays int
	Logger        *slog.Logger
}

// Run executes one daily pass. Failures of individual notifications are
// logged and counted, never returned; the only error is a canceled context.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	log := s.logger().With(config.LogKeyComponent, config.CompReminder)
	today := engine.StartOfDay(s.Clock.Now())
	var sum Summary

	log.Info(config.MsgRunStarted, config.LogKeyDate, today.Format(config.DailyKeyLayout))

	if s.RetentionDays > 0 {
		pruned, err := s.Ledger.Prune(ctx, today.AddDate(0, 0, -s.RetentionDays))
		if err != nil {
			log.Error(config.ErrLedgerPrune, config.LogKeyError, err)
		}
		sum.Pruned = pruned
	}

	records, report, err := s.Source.Load(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return sum, ctxErr
		}
		// A missing or unreadable file means an empty list for this run.
		log.Error(config.ErrSourceRead, config.LogKeyError, err)
		records = nil
	}
	// Skipped rows were already logged by the parser.
	sum.Loaded, sum.Skipped = report.Loaded, report.Skipped

	if today.Day() == 1 {
		log.Info(config.MsgDigestDay)
		sum.DigestSent = s.sendDigest(ctx, today, records)
	}

	reminders := engine.Select(today, records, s.Thresholds, s.logger())
	sum.Selected = len(reminders)
	log.Debug(config.MsgSelected, config.LogKeyCount, len(reminders))

	for _, r := range reminders {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		s.dispatch(ctx, today, r, &sum)
	}

	log.Info(config.MsgRunFinished,
		config.LogKeyLoaded, sum.Loaded,
		config.LogKeySkipped, sum.Skipped,
		config.LogKeySent, sum.Sent,
		config.LogKeyFailed, sum.Failed,
		config.LogKeyDuplicate, sum.Duplicates,
	)
	return sum, ctx.Err()
}

// dispatch claims one reminder in today's bucket and sends it.
func (s *Service) dispatch(ctx context.Context, today time.Time, r engine.Reminder, sum *Summary) {
	log := s.logger().With(
		config.LogKeyComponent, config.CompReminder,
		config.LogKeyName, r.Name,
		config.LogKeyDays, r.Days,
	)

	ok, err := s.Ledger.Claim(ctx, ledger.DailyKey(today), r.Name, r.Days)
	if !s.claimed(log, ok, err, config.ErrReminderClaim) {
		if err == nil {
			sum.Duplicates++
			log.Debug(config.MsgReminderAlready)
		} else {
			sum.Failed++
		}
		return
	}

	text := s.Catalog.Reminder(EscapeMarkdown(r.Name), r.Days)
	if err := s.Notifier.Send(ctx, text); err != nil {
		sum.Failed++
		log.Error(config.ErrNotifier, config.LogKeyError, err)
		return
	}
	sum.Sent++
	log.Info(config.MsgReminderSent)
}

// sendDigest posts the list of this month's birthdays once per month and
// reports whether a message went out.
func (s *Service) sendDigest(ctx context.Context, today time.Time, records []engine.Record) bool {
	log := s.logger().With(config.LogKeyComponent, config.CompDigest)
	key := ledger.MonthlyKey(today)

	ok, err := s.Ledger.Claim(ctx, key, config.DigestName, config.DigestSentinel)
	if !s.claimed(log, ok, err, config.ErrDigestClaim) {
		if err == nil {
			log.Info(config.MsgDigestAlready, config.LogKeyBucket, key.String())
		}
		return false
	}

	text := s.DigestText(today.Year(), today.Month(), records)
	if text == "" {
		log.Info(config.MsgDigestEmpty, config.LogKeyMonth, int(today.Month()))
		return false
	}

	if err := s.Notifier.Send(ctx, text); err != nil {
		log.Error(config.ErrNotifier, config.LogKeyError, err)
		return false
	}
	log.Info(config.MsgDigestSent, config.LogKeyBucket, key.String())
	return true
}

// DigestText builds the message for month of year, or "" when nobody has a
// birthday then. Lines are ordered by day; ties keep input order.
func (s *Service) DigestText(year int, month time.Month, records []engine.Record) string {
	inMonth := engine.InMonth(records, year, month)
	if len(inMonth) == 0 {
		return ""
	}

	monthName := s.Catalog.MonthName(month)
	lines := make([]string, 0, len(inMonth)+1)
	lines = append(lines, s.Catalog.Msg(config.TKeyDigestHeader, nil))
	for _, rec := range inMonth {
		lines = append(lines, s.Catalog.Msg(config.TKeyDigestLine, map[string]any{
			"Name":  EscapeMarkdown(rec.Name),
			"Day":   rec.Day,
			"Month": monthName,
		}))
	}
	return strings.Join(lines, "\n")
}

// TestNotification sends a fixed message through the notifier.
func (s *Service) TestNotification(ctx context.Context) error {
	if err := s.Notifier.Send(ctx, s.Catalog.Msg(config.TKeyTestMessage, nil)); err != nil {
		return err
	}
	s.logger().Info(config.MsgTestSent, config.LogKeyComponent, config.CompNotifier)
	return nil
}

// claimed interprets a ledger answer. A claim that was granted but not
// persisted still counts as claimed so the message goes out.
func (s *Service) claimed(log *slog.Logger, ok bool, err error, msg string) bool {
	if err != nil {
		if ok && errors.Is(err, ledger.ErrLedgerWrite) {
			log.Error(config.ErrLedgerWrite, config.LogKeyError, err)
			return true
		}
		log.Error(msg, config.LogKeyError, err)
		return false
	}
	return ok
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
