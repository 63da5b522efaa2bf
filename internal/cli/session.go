package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vrk-kpa/ptv-releases-sub007/internal/config"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/logger"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/maintenance"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/pgstore"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/store"
)

// repository is what both database backends offer.
type repository interface {
	maintenance.VersionRepository
	maintenance.OrganizationRepository
	maintenance.Importer
	Close() error
}

// session is the configured environment of one command run.
type session struct {
	cfg       *config.Config
	log       *logger.Logger
	repo      repository
	formatter *OutputFormatter
}

// openSession loads configuration, applies flag overrides, builds the logger
// and opens the configured database. Failures are reported through the
// formatter and returned as ExitCommandError.
func openSession(ctx context.Context, opts *RootOptions, cmd *cobra.Command) (*session, error) {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fail(formatter, ErrCodeConfig, "failed to load config", err)
	}
	applyOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, fail(formatter, ErrCodeConfig, "invalid config", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())

	var repo repository
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := pgstore.New(ctx, cfg, log)
		if err != nil {
			return nil, fail(formatter, ErrCodeStorage, "failed to connect to database", err)
		}
		repo = db
	default:
		formatter.VerboseLog("opening database %s", cfg.Database.Path)
		st, err := store.Open(cfg.Database.Path)
		if err != nil {
			return nil, fail(formatter, ErrCodeStorage, "failed to open database", err)
		}
		repo = st
	}

	return &session{cfg: cfg, log: log, repo: repo, formatter: formatter}, nil
}

func applyOverrides(cfg *config.Config, opts *RootOptions) {
	if db := opts.Database; db != "" {
		if strings.HasPrefix(db, "postgres://") || strings.HasPrefix(db, "postgresql://") {
			cfg.Database.Driver = config.DriverPostgres
			cfg.Database.URL = db
		} else {
			cfg.Database.Driver = config.DriverSQLite
			cfg.Database.Path = db
		}
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	if opts.LogFormat != "" {
		cfg.Log.Format = opts.LogFormat
	}
}

func (s *session) runner(opts *RootOptions) *maintenance.Runner {
	var runnerOpts []maintenance.RunnerOption
	if opts.RunIDs != nil {
		runnerOpts = append(runnerOpts, maintenance.WithRunIDs(opts.RunIDs))
	}
	return maintenance.NewRunner(s.repo, s.repo, s.log, runnerOpts...)
}

func (s *session) Close() {
	if err := s.repo.Close(); err != nil {
		s.log.Error("error closing database", "error", err)
	}
}

// fail reports err through the formatter and returns the matching ExitError.
func fail(formatter *OutputFormatter, code, message string, err error) error {
	_ = formatter.Error(code, message, err.Error())
	return WrapExitError(ExitCommandError, message, err)
}

// failRun maps a maintenance error to an error code.
func failRun(formatter *OutputFormatter, message string, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return fail(formatter, ErrCodeInterrupted, "interrupted", err)
	case errors.Is(err, maintenance.ErrStorage):
		return fail(formatter, ErrCodeStorage, message, err)
	default:
		return fail(formatter, ErrCodeGeneric, message, err)
	}
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
// Uses the command's context if available (for testing).
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan) // Prevent signal handler leak
		cancel()
	}
}
