// Package server wires the staffdesk web server command: configuration,
// storage, auth services, and the HTTP listener.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/evereld/staffdesk/internal/auth/account"
	"github.com/evereld/staffdesk/internal/auth/oauth"
	"github.com/evereld/staffdesk/internal/auth/password"
	"github.com/evereld/staffdesk/internal/auth/session"
	"github.com/evereld/staffdesk/internal/auth/ticket"
	"github.com/evereld/staffdesk/internal/storage/sqlite"
	"github.com/evereld/staffdesk/internal/web"
)

const (
	defaultHTTPAddr  = "localhost:8080"
	defaultDBPath    = "staffdesk.db"
	defaultUploadDir = "uploads"

	cleanupInterval = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// Config holds the server command configuration.
type Config struct {
	HTTPAddr           string
	DBPath             string
	UploadDir          string
	PasswordScheme     string
	SessionIdleTimeout time.Duration
}

// EnvLookup returns the value for a key when present.
type EnvLookup func(string) (string, bool)

// ParseConfig parses flags into a Config, with environment fallbacks.
func ParseConfig(fs *flag.FlagSet, args []string, lookup EnvLookup) (Config, error) {
	cfg := Config{
		HTTPAddr:       envOrDefault(lookup, "STAFFDESK_HTTP_ADDR", defaultHTTPAddr),
		DBPath:         envOrDefault(lookup, "STAFFDESK_DB_PATH", defaultDBPath),
		UploadDir:      envOrDefault(lookup, "STAFFDESK_UPLOAD_DIR", defaultUploadDir),
		PasswordScheme: envOrDefault(lookup, "STAFFDESK_PASSWORD_SCHEME", ""),
	}

	if raw := envOrDefault(lookup, "STAFFDESK_SESSION_IDLE_TIMEOUT", ""); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse STAFFDESK_SESSION_IDLE_TIMEOUT: %w", err)
		}
		cfg.SessionIdleTimeout = timeout
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.UploadDir, "upload-dir", cfg.UploadDir, "directory for uploaded images")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the staffdesk web server and blocks until the context ends.
func Run(ctx context.Context, cfg Config) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	ticketCfg, err := ticket.LoadConfigFromEnv(nil)
	if err != nil {
		return err
	}
	signer, err := ticket.NewSigner(ticketCfg)
	if err != nil {
		return fmt.Errorf("init ticket signer: %w", err)
	}

	issuer, err := session.NewIssuer(signer, store, cfg.SessionIdleTimeout, nil)
	if err != nil {
		return fmt.Errorf("init session issuer: %w", err)
	}

	accounts := account.NewService(store, password.ForScheme(password.Scheme(cfg.PasswordScheme)), nil)

	// Google sign-in is optional; without a client registration the local
	// credential flows still work.
	var bridge *oauth.Bridge
	if oauthCfg, err := oauth.LoadConfigFromEnv(); err == nil {
		bridge, err = oauth.NewBridge(oauthCfg, store, nil, nil)
		if err != nil {
			return fmt.Errorf("init federation bridge: %w", err)
		}
	} else {
		log.Printf("server: google sign-in disabled: %v", err)
	}

	server, err := web.NewServer(web.Config{
		Accounts:  accounts,
		Issuer:    issuer,
		Signer:    signer,
		Bridge:    bridge,
		Clients:   store,
		Members:   store,
		Statuses:  store,
		Projects:  store,
		UploadDir: cfg.UploadDir,
	})
	if err != nil {
		return fmt.Errorf("init web server: %w", err)
	}
	server.StartCleanup(ctx, cleanupInterval)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server: listening on %s", cfg.HTTPAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func envOrDefault(lookup EnvLookup, key, fallback string) string {
	if lookup != nil {
		if value, ok := lookup(key); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return fallback
}
