package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/avelara/sptools/internal/shared"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}
	r.config = config

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// SetupCert generates the self-signed TLS certificate pair used by the OAuth
// redirect listener.
func (r *Runner) SetupCert(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfigFromFlag(cmd); err != nil {
		return err
	}

	certFile := r.config.Auth.CertFile
	keyFile := r.config.Auth.KeyFile

	if !cmd.Bool("force") {
		_, certErr := os.Stat(certFile)
		_, keyErr := os.Stat(keyFile)
		if certErr == nil && keyErr == nil {
			r.writePlain("Certificate files already exist (%s, %s). Use --force to regenerate.\n", certFile, keyFile)
			return nil
		}
	}

	r.logger.Info("generating self-signed certificate", "cert", certFile, "key", keyFile)
	if err := shared.GenerateDevCert(shared.DevCertOptions{CertFile: certFile, KeyFile: keyFile}); err != nil {
		return fmt.Errorf("failed to generate certificate: %w", err)
	}

	r.writePlain("✓ Certificate written to %s\n", certFile)
	r.writePlain("✓ Private key written to %s\n", keyFile)
	r.writePlainln("Trust the certificate in your browser, or accept the warning during 'sptools auth login'.")
	return nil
}
