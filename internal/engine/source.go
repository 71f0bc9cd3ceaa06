package engine

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/birthday-reminder/internal/config"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrSourceMissing is returned when the birthday file does not exist.
	ErrSourceMissing = errors.New(config.ErrSourceMissing)

	// ErrRowMalformed is wrapped by every per-row issue in a LoadReport.
	ErrRowMalformed = errors.New(config.ErrRowMalformed)
)

// Source loads the birthday list. Implementations read the file fresh on
// every call.
type Source interface {
	Load(ctx context.Context) ([]Record, LoadReport, error)
}

// RowIssue describes one row that could not be turned into a Record.
type RowIssue struct {
	Line int
	Err  error
}

// LoadReport aggregates the outcome of a load.
type LoadReport struct {
	Loaded  int
	Skipped int
	Issues  []RowIssue
}

func (r *LoadReport) skip(line int, err error) {
	r.Skipped++
	if err != nil {
		r.Issues = append(r.Issues, RowIssue{Line: line, Err: err})
	}
}

// FileSource reads birthdays from a CSV or vCard file depending on its extension.
type FileSource struct {
	Path              string
	DefaultImportance int // used for vCards without an importance property
	Logger            *slog.Logger
}

// NewFileSource creates a FileSource. A nil logger falls back to slog.Default().
func NewFileSource(path string, defaultImportance int, logger *slog.Logger) *FileSource {
	return &FileSource{Path: path, DefaultImportance: defaultImportance, Logger: logger}
}

// Load opens the file and parses every row. Malformed rows are skipped and
// reported; only a missing or unreadable file is returned as an error, in
// which case the record list is empty.
func (s *FileSource) Load(ctx context.Context) ([]Record, LoadReport, error) {
	log := loggerOr(s.Logger).With(
		config.LogKeyComponent, config.CompSource,
		config.LogKeyPath, s.Path,
	)

	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, LoadReport{}, fmt.Errorf("%w: %s", ErrSourceMissing, s.Path)
		}
		return nil, LoadReport{}, fmt.Errorf("%s: %w", config.ErrSourceRead, err)
	}
	// Best effort close. Errors in Close() for read-only files are rarely actionable here.
	defer func() { _ = f.Close() }()

	var (
		records []Record
		report  LoadReport
	)
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case config.ExtVCF, config.ExtVCard:
		records, report, err = ParseVCards(ctx, f, s.DefaultImportance, log)
	default:
		records, report, err = ParseCSV(ctx, f, log)
	}
	if err != nil {
		return nil, report, err
	}

	log.Info(config.MsgSourceLoaded,
		config.LogKeyLoaded, report.Loaded,
		config.LogKeySkipped, report.Skipped,
	)
	return records, report, nil
}

// ParseCSV reads rows of (name, MM/DD, importance). The first row is treated
// as a header when its date column is not a MM/DD value. Rows with fewer than
// three fields are skipped silently; other malformed rows are skipped with a
// warning and listed in the report.
func ParseCSV(ctx context.Context, r io.Reader, logger *slog.Logger) ([]Record, LoadReport, error) {
	log := loggerOr(logger)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		records []Record
		report  LoadReport
		first   = true
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				report.skip(parseErr.Line, fmt.Errorf("%w: %v", ErrRowMalformed, parseErr.Err))
				log.Warn(config.MsgSkippedRow,
					config.LogKeyLine, parseErr.Line,
					config.LogKeyError, err)
				continue
			}
			return nil, report, fmt.Errorf("%s: %w", config.ErrSourceRead, err)
		}

		line, _ := reader.FieldPos(0)
		if first && len(fields) > 0 {
			fields[0] = strings.TrimPrefix(fields[0], config.UTF8BOM)
		}
		isFirst := first
		first = false

		if len(fields) < config.CSVMinFields {
			report.skip(line, nil)
			continue
		}

		if isFirst {
			if _, _, err := parseMonthDay(fields[1]); err != nil {
				continue // header row
			}
		}

		rec, err := parseRow(fields)
		if err != nil {
			report.skip(line, err)
			log.Warn(config.MsgSkippedRow,
				config.LogKeyLine, line,
				config.LogKeyError, err)
			continue
		}

		records = append(records, rec)
		report.Loaded++
	}

	return records, report, nil
}

// parseRow converts one CSV row into a Record.
func parseRow(fields []string) (Record, error) {
	name := normalizeName(fields[0])
	if name == "" {
		return Record{}, fmt.Errorf("%w: %s", ErrRowMalformed, config.ErrRowName)
	}

	month, day, err := parseMonthDay(fields[1])
	if err != nil {
		return Record{}, err
	}

	importance, err := parseImportance(fields[2])
	if err != nil {
		return Record{}, err
	}

	return Record{Name: name, Month: month, Day: day, Importance: importance}, nil
}

// parseMonthDay checks the MM/DD syntax and ranges. Calendar validity (04/31)
// is left to DaysUntil so that such records are skipped with a date warning.
func parseMonthDay(value string) (time.Month, int, error) {
	parts := strings.Split(strings.TrimSpace(value), config.MonthDaySep)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %s: %q", ErrRowMalformed, config.ErrRowDate, value)
	}
	m, errM := strconv.Atoi(strings.TrimSpace(parts[0]))
	d, errD := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errM != nil || errD != nil || m < 1 || m > 12 || d < 1 || d > 31 {
		return 0, 0, fmt.Errorf("%w: %s: %q", ErrRowMalformed, config.ErrRowDate, value)
	}
	return time.Month(m), d, nil
}

func parseImportance(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < config.MinImportance || n > config.MaxImportance {
		return 0, fmt.Errorf("%w: %s: %q", ErrRowMalformed, config.ErrRowImportance, value)
	}
	return n, nil
}

func normalizeName(value string) string {
	return norm.NFC.String(strings.TrimSpace(value))
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
