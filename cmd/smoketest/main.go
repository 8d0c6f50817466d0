package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/myrjola/chartnote/internal/e2etest"
	"github.com/myrjola/chartnote/internal/errors"
	"github.com/myrjola/chartnote/internal/logging"
	"github.com/myrjola/chartnote/internal/session"
)

// TestAccess passes the access gate and reads the patient registry.
func TestAccess(client *e2etest.Client, accessCode string) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return errors.Wrap(err, "wait for ready")
	}
	if accessCode == "" {
		status, err := client.Session(ctx)
		if err != nil {
			return errors.Wrap(err, "fetch session")
		}
		if status.CSRFToken == "" {
			return errors.New("session has no CSRF token")
		}
		return nil
	}
	if err := client.Login(ctx, accessCode); err != nil {
		return errors.Wrap(err, "login")
	}
	var snapshot session.Snapshot
	code, err := client.DoJSON(ctx, http.MethodGet, "/api/patients", nil, &snapshot)
	if err != nil {
		return errors.Wrap(err, "list patients")
	}
	if code != http.StatusOK || len(snapshot.Patients) == 0 {
		return errors.New("unexpected patient registry", slog.Int("status", code),
			slog.Int("patients", len(snapshot.Patients)))
	}
	if err = client.Logout(ctx); err != nil {
		return errors.Wrap(err, "logout")
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) < 2 || len(os.Args) > 3 { //nolint:mnd // hostname and optional access code.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname> [access code]")
		os.Exit(1)
	}

	var (
		hostname   = os.Args[1]
		url        = "https://" + hostname
		accessCode string
		client     *e2etest.Client
		err        error
	)
	if len(os.Args) == 3 { //nolint:mnd // access code given.
		accessCode = os.Args[2]
	}
	ctx = logging.WithAttrs(ctx, slog.String("hostname", url))

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestAccess(client, accessCode); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing access", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
