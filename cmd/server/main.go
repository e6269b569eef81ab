// Command `sammon-server` runs Sammon mappings behind a local HTTP API.
//
// It exposes JSON endpoints to upload datasets and run mappings, streams
// per-iteration progress over a WebSocket and optionally serves a static
// frontend from `-web`.
//
// Flags:
//
//	-addr:     TCP address to listen on (default 127.0.0.1:8080)
//	-web:      optional path to a web root containing index.html
//	-db:       bbolt file that archives finished results (empty disables it)
//	-max-jobs: mappings allowed to run at once
//	-dev:      human-readable development logging
//	-open:     open the UI URL in your default browser at startup
//
// Env:
//
//	SAMMON_ADDR, SAMMON_WEB, SAMMON_DB and SAMMON_MAX_JOBS provide flag defaults.
//	SAMMON_NO_OPEN=1 disables browser auto-open even when -open is set.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/CK6170/Sammon-go/internal/server"
)

func main() {
	var (
		addr    = flag.String("addr", envStr("SAMMON_ADDR", "127.0.0.1:8080"), "http listen address")
		web     = flag.String("web", envStr("SAMMON_WEB", ""), "optional path to web root (index.html)")
		db      = flag.String("db", envStr("SAMMON_DB", ""), "bbolt archive file for finished results")
		maxJobs = flag.Int("max-jobs", envInt("SAMMON_MAX_JOBS", 2), "mappings allowed to run at once")
		dev     = flag.Bool("dev", false, "development logging")
		open    = flag.Bool("open", false, "open the web UI in your default browser on startup")
	)
	flag.Parse()

	logger, err := newLogger(*dev)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := server.Config{DBPath: *db, MaxJobs: *maxJobs}
	if *web != "" {
		webDir, err := filepath.Abs(*web)
		if err != nil {
			logger.Fatal("resolve web directory", zap.Error(err))
		}
		if st, err := os.Stat(webDir); err != nil || !st.IsDir() {
			logger.Fatal("web directory does not exist", zap.String("dir", webDir))
		}
		cfg.WebDir = webDir
	}

	s, err := server.New(cfg, logger)
	if err != nil {
		logger.Fatal("create server", zap.Error(err))
	}
	defer s.Close()

	// Bind early so we fail fast if the port is in use.
	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Fatal("listen", zap.String("addr", *addr), zap.Error(err))
	}

	uiURL := makeUIURL(*addr)
	logger.Info("serving",
		zap.String("addr", *addr),
		zap.String("ui", uiURL),
		zap.String("db", cfg.DBPath),
		zap.Int("maxJobs", *maxJobs))

	if *open && cfg.WebDir != "" && os.Getenv("SAMMON_NO_OPEN") == "" {
		if err := openBrowser(uiURL); err != nil {
			logger.Warn("failed to open browser", zap.Error(err))
		}
	}

	if err := http.Serve(ln, s.Handler()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("serve", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return def
}

// makeUIURL turns a listen address (host:port) into a browser-friendly URL.
// Wildcard hosts are replaced by 127.0.0.1.
func makeUIURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Sprintf("http://%s/", strings.TrimSpace(addr))
	}
	if host == "" || host == "0.0.0.0" || host == "::" || host == "[::]" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%s/", host, port)
}

// openBrowser opens url in the OS default browser without waiting for it.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "windows":
		// The empty title argument prevents quoting issues with `start`.
		return exec.Command("cmd", "/c", "start", "", url).Start()
	case "darwin":
		return exec.Command("open", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
