package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/moodlog/internal/account"
	"github.com/mesh-intelligence/moodlog/internal/config"
	"github.com/mesh-intelligence/moodlog/internal/gemini"
	"github.com/mesh-intelligence/moodlog/internal/journal"
	"github.com/mesh-intelligence/moodlog/internal/logger"
	"github.com/mesh-intelligence/moodlog/internal/memory"
	"github.com/mesh-intelligence/moodlog/internal/paths"
	"github.com/mesh-intelligence/moodlog/internal/remote"
	"github.com/mesh-intelligence/moodlog/internal/sqlite"
	"github.com/mesh-intelligence/moodlog/pkg/types"
)

// Command annotations controlling how much PersistentPreRunE sets up.
const (
	annotationSetup = "setup"
	setupNone       = "none"   // nothing; the command needs no config
	setupConfig     = "config" // config and logger, no store
)

// app is the state one CLI invocation works with.
type app struct {
	flags rootFlags

	configDir string
	dataDir   string
	cfg       *config.Config
	logger    *slog.Logger

	store    types.Store
	accounts *account.Manager
	journal  *journal.Store

	// newClassifier builds the configured classifier. Tests replace it.
	newClassifier func(ctx context.Context, cfg *config.Config, log *slog.Logger) (types.Classifier, error)
}

func newApp() *app {
	return &app{newClassifier: buildClassifier}
}

// loadConfig resolves the config directory, loads config.yaml and sets up
// the logger on stderr.
func (a *app) loadConfig(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		if errors.Is(err, config.ErrInvalidConfig) {
			return userError(err)
		}
		return sysError(err)
	}

	level := cfg.LogLevel
	if a.flags.logLevel != "" {
		level = a.flags.logLevel
	}
	a.logger = logger.New(logger.Config{
		Level:  level,
		Format: logger.FormatText,
		Output: cmd.ErrOrStderr(),
	})

	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, cfg.DataDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	a.configDir = configDir
	a.dataDir = dataDir
	a.cfg = cfg
	a.logger.Debug("configuration loaded",
		"config_dir", configDir,
		"data_dir", dataDir,
		"backend", cfg.Backend)
	return nil
}

// openStore attaches the configured backend and restores the session saved
// by an earlier invocation.
func (a *app) openStore(ctx context.Context) error {
	var store types.Store
	switch a.cfg.Backend {
	case types.BackendMemory:
		store = memory.NewStore()
	default:
		backend := sqlite.NewBackend()
		if err := backend.Attach(a.cfg.StoreConfig(a.dataDir)); err != nil {
			return sysError(fmt.Errorf("attach store: %w", err))
		}
		store = backend
	}
	a.store = store

	signer, err := account.NewJWTSigner(a.cfg.Auth.SessionSecret, a.cfg.Auth.SessionTTL)
	if err != nil {
		return userError(err)
	}
	a.accounts = account.NewManager(store, account.NewBcryptHasher(a.cfg.Auth.BcryptCost), signer, account.Options{
		Latency:       a.cfg.Auth.Latency,
		VerifySession: a.cfg.Auth.VerifySession,
		Logger:        a.logger,
	})
	if _, err := a.accounts.RestoreSession(ctx); err != nil {
		return sysError(err)
	}
	a.journal = journal.NewStore(store, a.cfg.Classifier.Timeout, a.logger)
	return nil
}

// close detaches the store. It is safe to call when nothing was opened.
func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Detach()
	a.store = nil
	return err
}

// session returns the signed-in session or errNotSignedIn.
func (a *app) session() (*types.Session, error) {
	s := a.accounts.Current()
	if s == nil {
		return nil, userError(errNotSignedIn)
	}
	return s, nil
}

// classifier builds the classifier the config selects.
func (a *app) classifier(ctx context.Context) (types.Classifier, error) {
	c, err := a.newClassifier(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, userError(fmt.Errorf("set up classifier: %w", err))
	}
	return c, nil
}

func buildClassifier(ctx context.Context, cfg *config.Config, log *slog.Logger) (types.Classifier, error) {
	if cfg.Classifier.Provider == "remote" {
		c, err := remote.New(cfg.Classifier.Remote.URL, cfg.Classifier.Timeout, log)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	g := cfg.Classifier.Gemini
	c, err := gemini.New(ctx, log, gemini.Config{
		APIKey:             g.APIKey,
		Model:              g.Model,
		PromptTemplatePath: g.PromptTemplate,
		MaxRetries:         g.MaxRetries,
		RetryDelay:         g.RetryDelay,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
