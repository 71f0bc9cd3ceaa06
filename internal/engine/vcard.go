package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/birthday-reminder/internal/config"
)

// ParseVCards reads a vCard stream and keeps every card with a BDAY.
// The importance tier comes from the X-IMPORTANCE property, falling back to
// defaultImportance when absent or invalid.
func ParseVCards(ctx context.Context, r io.Reader, defaultImportance int, logger *slog.Logger) ([]Record, LoadReport, error) {
	log := loggerOr(logger)
	decoder := vcard.NewDecoder(r)

	var (
		records []Record
		report  LoadReport
		index   int
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		index++
		if err != nil {
			// Log error but continue to next card to maximize data recovery
			report.skip(index, fmt.Errorf("%w: %v", ErrRowMalformed, err))
			log.Warn(config.MsgSkippedCard, config.LogKeyError, err)
			if errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			continue
		}

		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		birthDate, err := parseDate(bday.Value)
		if err != nil {
			report.skip(index, fmt.Errorf("%w: %s: %q", ErrRowMalformed, config.ErrDateParse, bday.Value))
			log.Warn(config.MsgSkippedCard,
				config.LogKeyValue, bday.Value,
				config.LogKeyError, err)
			continue
		}

		// Name Strategy: FN (Formatted) > N (Structured) > Fallback
		name := config.FallbackName
		if fn := card.Get(config.VCardFN); fn != nil && strings.TrimSpace(fn.Value) != "" {
			name = fn.Value
		} else if n := card.Get(config.VCardN); n != nil && strings.TrimSpace(n.Value) != "" {
			name = n.Value
		}

		importance := defaultImportance
		if p := card.Get(config.VCardImportanceProp); p != nil {
			if v, err := parseImportance(p.Value); err == nil {
				importance = v
			}
		}

		records = append(records, Record{
			Name:       normalizeName(name),
			Month:      birthDate.Month(),
			Day:        birthDate.Day(),
			Importance: importance,
		})
		report.Loaded++
	}

	return records, report, nil
}

// parseDate handles the vCard date formats seen in the wild.
func parseDate(value string) (time.Time, error) {
	// Full dates (Year known)
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}

	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, nil
		}
	}

	// Truncated dates (Year unknown), parsed in a leap year so --02-29 survives.
	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, errors.New(config.ErrDateParse)
}
