package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ssincom-backend/config"
	"ssincom-backend/controllers"
	"ssincom-backend/database"
	"ssincom-backend/documents"
	"ssincom-backend/logger"
	"ssincom-backend/middlewares"
	"ssincom-backend/routes"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the database and start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.WithComponent("serve")

	if err := database.Connect(cfg.DBDriver, cfg.DSN()); err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(database.DB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	seller, err := config.LoadCompany(cfg.CompanyProfile)
	if err != nil {
		return err
	}
	engine, err := documents.NewEngine()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	controllers.Setup(engine, documents.NewWkhtmltopdf(cfg.WkhtmltopdfPath), seller)

	middlewares.ConfigureSession(cfg.SessionSecret, time.Duration(cfg.SessionHours)*time.Hour, cfg.AppEnv != "local")
	if err := controllers.ConfigureAccount(cfg.Username, cfg.Password); err != nil {
		return fmt.Errorf("configure account: %w", err)
	}

	app := routes.NewApp(routes.Options{
		AllowedOrigins:  cfg.AllowedOrigins,
		BodyLimitMB:     cfg.BodyLimitMB,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: time.Duration(cfg.RateLimitWindow) * time.Second,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	log.Info().Str("addr", cfg.Addr).Str("db", cfg.DBDriver).Str("seller", seller.Name).Msg("API server starting")
	return app.Listen(cfg.Addr)
}
