// Command equationshift rearranges equations by dragging terms between sides.
//
//	equationshift play "2*x+3" 7 x     interactive session on stdin
//	equationshift serve --addr :8080   HTTP API
//	equationshift simplify "2*(x+3)"
//	equationshift solve "2*x+3" 7 x
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/njchilds90/equationshift"
	"github.com/njchilds90/equationshift/cas"
	"github.com/njchilds90/equationshift/server"
)

var (
	configPath string
	verbose    bool
	addr       string

	logger *zap.Logger

	rootCmd = &cobra.Command{
		Use:           "equationshift",
		Short:         "Rearrange equations by moving terms from one side to the other",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfgZap := zap.NewProductionConfig()
			if verbose {
				cfgZap.Level.SetLevel(zapcore.DebugLevel)
			} else {
				cfgZap.Level.SetLevel(zapcore.WarnLevel)
			}
			l, err := cfgZap.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
	}

	playCmd = &cobra.Command{
		Use:   "play LEFT RIGHT TARGET",
		Short: "Solve an equation interactively, one move per line",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			e, err := equationshift.New(args[0], args[1], args[2], cfg, equationshift.WithLogger(logger))
			if err != nil {
				return err
			}
			return play(cmd.InOrStdin(), cmd.OutOrStdout(), e)
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve equation sessions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	simplifyCmd = &cobra.Command{
		Use:   "simplify EXPR",
		Short: "Simplify an expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cas.SimplifyText(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	solveCmd = &cobra.Command{
		Use:   "solve LEFT RIGHT TARGET",
		Short: "Print the solutions of LEFT = RIGHT for TARGET",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			roots, err := cas.SolveText(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(roots, ", "))
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log moves at debug level")
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "Address to listen on")

	rootCmd.AddCommand(playCmd, serveCmd, simplifyCmd, solveCmd)
}

func loadConfig() (equationshift.Config, error) {
	if configPath == "" {
		return equationshift.DefaultConfig(), nil
	}
	cfg, err := equationshift.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	logger.Info("Configuration loaded", zap.String("path", configPath))
	return cfg, nil
}

func serve(ctx context.Context, cfg equationshift.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, logger).HTTPServer(addr)
	errc := make(chan error, 1)
	go func() {
		logger.Warn("Starting server", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Warn("Shutting down server")
	return srv.Shutdown(shutdownCtx)
}

func main() {
	err := rootCmd.ExecuteContext(context.Background())
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		log.SetFlags(0)
		log.Fatalf("equationshift: %v", err)
	}
}
