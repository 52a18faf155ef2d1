package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/invcheck/invcheck/backend"
	"github.com/invcheck/invcheck/config"
	"github.com/invcheck/invcheck/logger"
	"github.com/invcheck/invcheck/web"

	"github.com/spf13/cobra"
)

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	level, err := logger.ParseLevel(config.GetLogLevel())
	if err != nil {
		log.Fatal(err)
	}
	logger.InitLogger(level)
	defer logger.CloseLogger()

	server := web.NewServer()
	err = server.Start()
	if err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			err := server.Stop()
			if err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer()
			err = server.Start()
			if err != nil {
				log.Println(err)
				return
			}
		default:
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

// pingBackend reports whether the configured inventory backend answers.
func pingBackend() error {
	client := backend.NewClient(config.GetBackendURL(), config.GetLoginMarker(), config.GetBackendTimeout())
	ctx, cancel := context.WithTimeout(context.Background(), config.GetBackendTimeout())
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("backend %s unreachable: %w", client.BaseURL(), err)
	}
	fmt.Println("backend", client.BaseURL(), "is up")
	return nil
}

var envFiles []string

func main() {
	var rootCmd = &cobra.Command{
		Use:   config.GetName(),
		Short: "Inventory check panel",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnv(envFiles...)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", []string{".env"}, "env files to load before reading INVCHECK_ variables")

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Check that the inventory backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			return pingBackend()
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.GetName(), config.GetVersion())
		},
	}

	rootCmd.AddCommand(runCmd, pingCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
