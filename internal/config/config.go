package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Birthday-Reminder/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "Birthday Reminder"
	AppCommand     = "birthday-reminder"
	AppID          = "com.github.tartampluch.birthday-reminder"
	KeyringService = "com.github.tartampluch.birthday-reminder"
	LockSuffix     = ".lock"
	TempSuffix     = ".tmp"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and the notification ledger.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagConfig       = "config"
	FlagOutput       = "output"
	FlagAlarm        = "alarm"
	FlagDays         = "days"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging"
	FlagDescConfig   = "Configuration file path"
	FlagDescOutput   = "Write the calendar to this file instead of stdout"
	FlagDescAlarm    = "ISO8601 alarm trigger added to every event (e.g. -P1D)"
	FlagDescDays     = "Only list birthdays within this many days (0 = all)"
	MsgVersionOutput = "%s version %s (commit %s, built %s, %s/%s)\n"
	DefaultConfigRel = "birthday-reminder.toml"
)

// -----------------------------------------------------------------------------
// Commands
// -----------------------------------------------------------------------------

const (
	CmdListUse         = "list"
	CmdListShort       = "Show upcoming birthdays"
	CmdExportUse       = "export"
	CmdExportShort     = "Write all birthdays as an iCalendar file"
	CmdServeUse        = "serve"
	CmdServeShort      = "Serve the birthday calendar over HTTP"
	CmdTestNotifyUse   = "test-notify"
	CmdTestNotifyShort = "Send a test message to the configured chat"
	CmdRootShort       = "Send birthday reminders to a chat"
	CmdRootLong        = "Reads the birthday file, sends the reminders due today and, on the first day of the month, the monthly digest. Meant to run once a day from cron."

	// AnnotationConsole routes console logs of a command to stderr so its
	// stdout carries only the command output.
	AnnotationConsole = "console"
	ConsoleStderr     = "stderr"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyReminderToday    = "reminder_today"     // Requires Name
	TKeyReminderTomorrow = "reminder_tomorrow"  // Requires Name
	TKeyReminderDays     = "reminder_in_days"   // Requires Name, Days
	TKeyDigestHeader     = "digest_header"      // No data
	TKeyDigestLine       = "digest_line"        // Requires Name, Day, Month
	TKeyTestMessage      = "test_message"       // No data
	TKeyEventSummary     = "event_summary"      // Requires Name
	TKeyMonthPrefix      = "month_"             // month_1 .. month_12
	TKeyColName          = "col_name"
	TKeyColDate          = "col_date"
	TKeyColDays          = "col_days"
	TKeyColImportance    = "col_importance"
	LocaleDir            = "locales"
	LocaleFilePrefix     = "active."
	LocaleFileSuffix     = ".json"
	LocaleUnmarshalToken = "json"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultLanguage          = "es"
	DefaultLeapYear          = 2000 // Leap year used to validate month/day pairs like 02/29
	DefaultImportance        = 3
	MinImportance            = 1
	MaxImportance            = 3
	DefaultSourcePath        = "data/fechas.csv"
	DefaultLedgerPath        = "data/enviados.json"
	DefaultLedgerBackend     = LedgerBackendJSON
	DefaultLogDir            = "logs"
	DefaultLogFile           = "main.log"
	DefaultLogLevel          = "info"
	DefaultTelegramAPI       = "https://api.telegram.org"
	DefaultRequestTimeoutSec = 10
	DefaultServerPort        = "18080"
	DefaultRefreshMin        = 60
	DigestName               = "lista_mensual"
	DigestSentinel           = -1
	LedgerBackendJSON        = "json"
	LedgerBackendSQLite      = "sqlite"
	VCardImportanceProp      = "X-IMPORTANCE"
	UIDSalt                  = "birthday-reminder-v1-"
)

// DefaultThresholds maps each importance tier to the "days before" values that
// trigger a reminder.
var DefaultThresholds = map[int][]int{
	1: {0, 1, 7, 30},
	2: {0, 1, 7},
	3: {0},
}

// -----------------------------------------------------------------------------
// Environment Variables
// -----------------------------------------------------------------------------

const (
	EnvBotToken = "TELEGRAM_BOT_TOKEN"
	EnvChatID   = "TELEGRAM_CHAT_ID"
	KeyringUser = "telegram_bot_token"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Birthday Reminder//Engine//EN"
	ICalCalName   = "Birthdays"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "birthday-reminder"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// MonthDayLayout is the birthday column layout of the CSV source (MM/DD).
	MonthDayLayout   = "01/02"
	MonthDaySep      = "/"
	DailyKeyLayout   = "2006-01-02"
	MonthlyKeyLayout = "2006-01"

	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// Limits
	MinPort          = 1
	MaxPort          = 65535
	CSVMinFields     = 3
	MaxErrorBodySize = 2048
	HoursPerDay      = 24

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%02d-%02d|%s"
	FormatUID       = "%s@%s"

	// File Extensions
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"

	// UTF8BOM is stripped from the first CSV field when present.
	UTF8BOM = "\uFEFF"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	LocalhostBindAddr   = "127.0.0.1"
	TelegramPathFormat  = "%s/bot%s/sendMessage"
	TelegramParseMode   = "Markdown"
	TelegramFieldChatID = "chat_id"
	TelegramFieldText   = "text"
	TelegramFieldParse  = "parse_mode"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeFormURLEncoded  = "application/x-www-form-urlencoded"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrSourceMissing    = "birthday file not found"
	ErrSourceRead       = "failed to read birthday file"
	ErrRowMalformed     = "malformed birthday row"
	ErrRowName          = "empty name"
	ErrRowDate          = "date must be MM/DD"
	ErrRowImportance    = "importance must be an integer between 1 and 3"
	ErrInvalidDate      = "invalid calendar date"
	ErrLedgerCorrupt    = "notification ledger is corrupt"
	ErrLedgerRead       = "failed to read notification ledger"
	ErrLedgerWrite      = "failed to write notification ledger"
	ErrLedgerOpen       = "failed to open notification ledger"
	ErrLedgerBackend    = "configuration error: unsupported ledger backend"
	ErrLedgerKey        = "invalid ledger bucket key"
	ErrLockAcquire      = "failed to acquire run lock"
	ErrNotifier         = "notification delivery failed"
	ErrNotifierStatus   = "chat API returned unexpected status"
	ErrNotifierNetwork  = "network error while sending notification"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrConfigOpen       = "failed to open config file"
	ErrConfigParse      = "failed to parse config file"
	ErrConfigStat       = "failed to stat config file"
	ErrConfigThreshold  = "configuration error: thresholds must be non-negative"
	ErrConfigTier       = "configuration error: unknown importance tier"
	ErrConfigTimeout    = "configuration error: request timeout must be positive"
	ErrConfigLanguage   = "configuration error: unknown language tag"
	ErrConfigTimezone   = "configuration error: unknown timezone"
	ErrConfigPath       = "configuration error: path is empty"
	ErrHomeDir          = "could not resolve home directory"
	ErrAbsPath          = "could not resolve absolute path"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrPortNumber       = "server port must be a number"
	ErrPortRange        = "server port must be between 1 and 65535"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrLogFile          = "failed to open log file"
	ErrCreateDir        = "could not create directory"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrWriteOutput      = "failed to write output"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrKeyringLookup    = "keyring lookup failed"
	ErrDigestClaim      = "failed to claim monthly digest"
	ErrReminderClaim    = "failed to claim reminder"
	ErrLedgerPrune      = "failed to prune notification ledger"
	ErrTestNotification = "test notification failed"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackName    = "Unknown"
	FallbackSummary = "Birthday: %s"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgAppStarting     = "Starting application"
	MsgAppStop         = "Application finished"
	MsgRunStarted      = "Notification run started"
	MsgRunFinished     = "Notification run finished"
	MsgRunLocked       = "Another run holds the lock, skipping"
	MsgDigestDay       = "First day of the month, processing monthly digest"
	MsgDigestSent      = "Monthly digest sent"
	MsgDigestAlready   = "Monthly digest already sent"
	MsgDigestEmpty     = "No birthdays this month"
	MsgReminderSent    = "Reminder sent"
	MsgReminderAlready = "Reminder already sent"
	MsgSelected        = "Reminders selected"
	MsgSkippedRow      = "Skipping malformed birthday row"
	MsgSkippedDate     = "Skipping record with invalid date"
	MsgSkippedCard     = "Skipping malformed vCard"
	MsgSourceLoaded    = "Birthday file loaded"
	MsgLedgerCorrupt   = "Notification ledger is corrupt, starting empty"
	MsgLedgerFallback  = "Notification ledger unavailable, falling back to the JSON document"
	MsgLedgerPruned    = "Notification ledger pruned"
	MsgMessageSent     = "Message sent"
	MsgNotifierNoop    = "Chat credentials missing, notifications disabled"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgCacheUpdated    = "Calendar cache updated"
	MsgRefreshFailed   = "Calendar refresh failed, keeping previous content"
	MsgRefreshForced   = "Calendar refresh requested"
	MsgWorkerStart     = "Background worker started"
	MsgWorkerStop      = "Worker stopping due to context cancellation"
	MsgCalendarBuilt   = "Calendar generation successful"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgConfigLoaded    = "Configuration loaded"
	MsgConfigDefault   = "Configuration file not found, using defaults"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgExportWritten   = "Calendar exported"
	MsgTestSent        = "Test notification sent"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLine      = "line"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyInterval  = "interval"
	LogKeyPath      = "path"
	LogKeyBackend   = "backend"
	LogKeyBucket    = "bucket"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCount     = "count"
	LogKeyLoaded    = "loaded"
	LogKeySkipped   = "skipped"
	LogKeySent      = "sent"
	LogKeyFailed    = "failed"
	LogKeyDuplicate = "duplicates"
	LogKeyName      = "name"
	LogKeyDays      = "days"
	LogKeyMonth     = "month"
	LogKeyDate      = "date"
	LogKeyRunID     = "run_id"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyBuilt   = "built"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain     = "main"
	CompConfig   = "config"
	CompSource   = "source"
	CompSelector = "selector"
	CompLedger   = "ledger"
	CompReminder = "reminder"
	CompDigest   = "digest"
	CompNotifier = "notifier"
	CompServer   = "server"
	CompWorker   = "worker"
	CompCalendar = "calendar"
	CompI18n     = "i18n"
)
