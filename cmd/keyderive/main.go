// Command keyderive derives deterministic keys from a code and a password.
//
// Usage:
//
//	keyderive raw                          prompt for secrets, print hex key
//	keyderive bitcoin [--address] [--qr]   prompt for secrets, print WIF
//	keyderive serve                        run the local HTTP API
//
// @title        keyderive API
// @version      1.0
// @description  Local deterministic key derivation from a code and a password
// @host         localhost:8080
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AlexZinkM/keyderive/derive"
	"github.com/AlexZinkM/keyderive/internal/api"
	"github.com/AlexZinkM/keyderive/internal/common"
	"github.com/AlexZinkM/keyderive/internal/config"
)

const shutdownTimeout = 10 * time.Second

// secretReader reads one secret, the caller zeroes the result
type secretReader func(label string) ([]byte, error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(os.Stdout, config.PromptSecret)
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

func newApp(out io.Writer, readSecret secretReader) *cli.App {
	return &cli.App{
		Name:   "keyderive",
		Usage:  "derive deterministic keys from a code and a password",
		Writer: out,
		Commands: []*cli.Command{
			{
				Name:   "raw",
				Usage:  "derive a 64 character hex key",
				Action: rawAction(readSecret),
			},
			{
				Name:  "bitcoin",
				Usage: "derive a compressed mainnet bitcoin private key (WIF)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "address", Usage: "also print the P2PKH address"},
					&cli.BoolFlag{Name: "qr", Usage: "also print a QR code of the WIF"},
				},
				Action: bitcoinAction(readSecret),
			},
			{
				Name:   "serve",
				Usage:  "run the local HTTP API (configured from environment)",
				Action: serveAction,
			},
		},
		// exit codes are handled in main
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// readSecrets prompts for code and password
func readSecrets(readSecret secretReader) (code, password string, err error) {
	codeBytes, err := readSecret("code")
	if err != nil {
		return "", "", err
	}
	defer clear(codeBytes)

	passwordBytes, err := readSecret("password")
	if err != nil {
		return "", "", err
	}
	defer clear(passwordBytes)

	return string(codeBytes), string(passwordBytes), nil
}

func rawAction(readSecret secretReader) cli.ActionFunc {
	return func(c *cli.Context) error {
		code, password, err := readSecrets(readSecret)
		if err != nil {
			return err
		}

		key, err := derive.RawKey(code, password)
		if err != nil {
			return cli.Exit(describe(err), 2)
		}

		fmt.Fprintln(c.App.Writer, key)
		return nil
	}
}

func bitcoinAction(readSecret secretReader) cli.ActionFunc {
	return func(c *cli.Context) error {
		code, password, err := readSecrets(readSecret)
		if err != nil {
			return err
		}

		wif, address, err := derive.BitcoinAddress(code, password)
		if err != nil {
			return cli.Exit(describe(err), 2)
		}

		fmt.Fprintln(c.App.Writer, wif)
		if c.Bool("address") {
			fmt.Fprintln(c.App.Writer, address)
		}
		if c.Bool("qr") {
			qr, err := common.QRCodeText(wif)
			if err != nil {
				return err
			}
			fmt.Fprint(c.App.Writer, qr)
		}
		return nil
	}
}

func serveAction(c *cli.Context) error {
	if err := config.Init(); err != nil {
		return err
	}

	logger, err := newLogger(config.Get())
	if err != nil {
		return err
	}
	defer logger.Sync()

	router, err := api.SetupRouter(logger)
	if err != nil {
		return fmt.Errorf("failed to set up router: %w", err)
	}

	srv := &http.Server{
		Addr:              config.GetListenAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-c.Context.Done():
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

// newLogger builds the zap logger from config
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.LogDevelopment {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// describe formats a derivation error with its code
func describe(err error) string {
	if code := derive.ErrorCode(err); code != "" {
		return fmt.Sprintf("%s: %v", code, err)
	}
	return err.Error()
}
