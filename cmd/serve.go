package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/logger"
	"github.com/spigell/job-matcher/internal/metrics"
	"github.com/spigell/job-matcher/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the matching API over HTTP",
	RunE: func(_ *cobra.Command, _ []string) error {
		log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer log.Sync()

		config, err := getConfig()
		if err != nil {
			log.Error("failed to load configuration", zap.Error(err))
			return err
		}

		ctx, stop := signal.NotifyContext(rootContext(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		metrics.Register()

		matcher, info, err := newEngine(ctx, config, log)
		if err != nil {
			log.Error("failed to build the matching engine", zap.Error(err))
			return err
		}

		log.Info("starting the server",
			zap.String("listen", config.Server.Listen),
			zap.String("ai", info.AI),
			zap.Strings("providers", info.Providers),
		)

		if err := server.New(serverConfig(&config.Server), matcher, info, log).Run(ctx); err != nil {
			log.Error("server stopped with error", zap.Error(err))
			return err
		}

		log.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", "", "address to listen on (overrides server.listen)")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}
