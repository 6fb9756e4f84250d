// Command server runs the swissknife MCP server: a capability router over
// the web search, memory, and file providers, served over stdio or SSE.
package main

// file: cmd/server/main.go

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alexchoi0/swissknife-mcp/internal/config"
	"github.com/alexchoi0/swissknife-mcp/internal/logging"
)

// version is stamped by the build.
var version = "0.1.0-dev"

var (
	flagConfig    string
	flagTransport string
	flagPort      int
	flagDebug     bool
)

var rootCmd = &cobra.Command{
	Use:   "swissknife-mcp",
	Short: "An MCP server aggregating web search, memory, and file tools",
	Long: "swissknife-mcp serves the Model Context Protocol over stdio or SSE,\n" +
		"routing tool calls, resource reads, and prompt requests to its providers.",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger := logging.NewSlogLogger(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		logging.SetDefaultLogger(logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runServer(ctx, cfg, logger)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the server version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "swissknife-mcp %s\n", version)
	},
}

// loadConfig builds the effective configuration from the optional config
// file, the environment, and command-line flags, in rising precedence.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFromFile(flagConfig)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if flagTransport != "" {
		cfg.Server.Transport = flagTransport
	}
	if flagPort != 0 {
		cfg.Server.Port = flagPort
	}
	if flagDebug {
		cfg.Logging.Level = "debug"
	}
	if cfg.Server.Version == "" {
		cfg.Server.Version = version
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	// A .env next to the binary is a convenience for local runs; absence
	// is not an error.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to a YAML config file")
	serveCmd.Flags().StringVarP(&flagTransport, "transport", "t", "", "transport to serve on: stdio or sse")
	serveCmd.Flags().IntVarP(&flagPort, "port", "p", 0, "port for the SSE transport")
	serveCmd.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd, versionCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
