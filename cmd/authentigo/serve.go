package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"AuthentiGo/pkg/analyzer/image/authenticity"
	"AuthentiGo/pkg/filehandler"
	"AuthentiGo/pkg/server"
)

var (
	serveAddr      string
	serveUploadDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the upload page and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		if serveUploadDir != "" {
			cfg.Server.UploadDir = serveUploadDir
		}

		if err := filehandler.EnsureDir(cfg.Server.UploadDir); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(cfg, authenticity.NewDefaultRegistry(), logger)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveUploadDir, "upload-dir", "", "Upload directory (overrides server.upload_dir)")
}
