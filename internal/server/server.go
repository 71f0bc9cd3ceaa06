package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/birthday-reminder/internal/config"
)

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// BuildFunc renders the current birthday calendar.
type BuildFunc func(ctx context.Context) ([]byte, error)

// CalendarServer serves the birthday calendar over HTTP on the loopback
// interface and keeps it fresh from a BuildFunc.
type CalendarServer struct {
	// cache is read on every request and replaced on refresh, so reads
	// stay lock-free.
	cache atomic.Pointer[cacheItem]

	Port   string
	Logger *slog.Logger

	trigger chan struct{}
}

// NewCalendarServer creates a new instance of the server.
func NewCalendarServer(port string, logger *slog.Logger) *CalendarServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CalendarServer{
		Port:    port,
		Logger:  logger,
		trigger: make(chan struct{}, config.ChannelBufferSize),
	}
}

// Start serves HTTP until ctx is canceled.
func (s *CalendarServer) Start(ctx context.Context) error {
	log := s.log()
	if err := config.ValidatePort(s.Port); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(config.LocalhostBindAddr, s.Port),
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		log.Info(config.MsgServerListen, config.LogKeyPort, s.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info(config.MsgServerStop)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Handler returns the HTTP handler serving the calendar at the root path.
func (s *CalendarServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.handleCalendarRequest)
	return mux
}

// Update atomically replaces the served content.
func (s *CalendarServer) Update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	// Identical content keeps its validators so clients get 304s.
	if old := s.cache.Load(); old != nil && old.etag == etag {
		return
	}

	s.cache.Store(&cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	})

	s.log().Debug(config.MsgCacheUpdated,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// Trigger asks a running Refresh loop to rebuild now. Extra requests made
// while one is pending are dropped.
func (s *CalendarServer) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Refresh builds the calendar once, then again on every tick or Trigger,
// until ctx is canceled. A failed build keeps the previous content.
func (s *CalendarServer) Refresh(ctx context.Context, interval time.Duration, build BuildFunc) {
	log := s.log().With(config.LogKeyComponent, config.CompWorker)
	if interval <= 0 {
		interval = time.Duration(config.DefaultRefreshMin) * time.Minute
	}

	s.rebuild(ctx, build, log)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return
		case <-s.trigger:
			log.Info(config.MsgRefreshForced)
			s.rebuild(ctx, build, log)
		case <-ticker.C:
			s.rebuild(ctx, build, log)
		}
	}
}

func (s *CalendarServer) rebuild(ctx context.Context, build BuildFunc, log *slog.Logger) {
	data, err := build(ctx)
	if err != nil {
		log.Error(config.MsgRefreshFailed, config.LogKeyError, err)
		return
	}
	s.Update(data)
}

func (s *CalendarServer) log() *slog.Logger {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	return l.With(config.LogKeyComponent, config.CompServer)
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
func (s *CalendarServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	item := s.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		clientTime, err1 := time.Parse(http.TimeFormat, since)
		serverTime, err2 := time.Parse(http.TimeFormat, item.lastModified)
		if err1 == nil && err2 == nil && !serverTime.After(clientTime) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			s.log().Error(config.ErrWriteResp, config.LogKeyError, err)
		}
	}
}
