package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/engine"
	"github.com/spigell/job-matcher/internal/logger"
	"github.com/spigell/job-matcher/internal/pdftext"
)

var (
	resumePath string
	matchQuery string
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match a resume or a query against the job providers and print the result as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
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

		req, err := matchRequest(resumePath, matchQuery)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(rootContext(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		matcher, _, err := newEngine(ctx, config, log)
		if err != nil {
			log.Error("failed to build the matching engine", zap.Error(err))
			return err
		}

		resp, err := matcher.Match(ctx, req)
		if err != nil {
			log.Error("match failed", zap.Error(err))
			return err
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(resp)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVarP(&resumePath, "resume", "r", "", "path to a resume (PDF or plain text)")
	matchCmd.Flags().StringVarP(&matchQuery, "query", "q", "", "free-text job search query")
}

func matchRequest(path, query string) (*engine.Request, error) {
	req := &engine.Request{Query: query}
	if path == "" {
		return req, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}

	req.Document = data
	req.Filename = filepath.Base(path)
	req.MimeType = detectMimeType(path, data)

	return req, nil
}

func detectMimeType(path string, data []byte) string {
	if pdftext.IsPDF("", data) {
		return pdftext.MimeType
	}
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt
	}

	return http.DetectContentType(data)
}

func rootContext() context.Context {
	if ctx := rootCmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
