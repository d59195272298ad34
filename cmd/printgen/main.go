// cmd/printgen/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"printgen/internal/config"
	"printgen/internal/utils"
	"printgen/pkg/profile"
)

// Application wires the configuration and logger the subcommands share
type Application struct {
	config *config.Config
	logger *zap.Logger
}

var (
	flagConfig  string
	flagProfile string
	flagDB      string
)

func main() {
	root := &cobra.Command{
		Use:           "printgen",
		Short:         "Render print jobs into ESC/POS command streams",
		Long:          "printgen turns job documents into the raw command bytes a receipt printer consumes, without talking to any device.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "configuration file")
	root.PersistentFlags().StringVar(&flagProfile, "profile", "", "printer capability profile")
	root.PersistentFlags().StringVar(&flagDB, "capabilities", "", "external capability database file")

	root.AddCommand(newRenderCommand())
	root.AddCommand(newProfilesCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "printgen: %v\n", err)
		os.Exit(1)
	}
}

// newApplication loads configuration and builds the logger, in that order;
// logging setup needs the config first.
func newApplication() (*Application, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if flagProfile != "" {
		cfg.Profile.Name = flagProfile
	}
	if flagDB != "" {
		cfg.Profile.Path = flagDB
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &Application{config: cfg, logger: logger}, nil
}

// loadProfile resolves the capability profile named in the configuration.
func (app *Application) loadProfile(name string) (*profile.Profile, error) {
	if name == "" {
		name = app.config.Profile.Name
	}
	if app.config.Profile.Path != "" {
		return profile.LoadFile(app.config.Profile.Path, name)
	}
	return profile.Load(name)
}

// Close flushes the logger.
func (app *Application) Close() {
	_ = utils.CloseLogger(app.logger)
}
