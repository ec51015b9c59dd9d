package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/kvb/internal/config"
	"github.com/oakwood-commons/kvb/internal/session"
	"github.com/oakwood-commons/kvb/internal/store"
	"github.com/oakwood-commons/kvb/internal/store/azure"
	"github.com/oakwood-commons/kvb/internal/store/sqlite"
	"github.com/oakwood-commons/kvb/internal/ui"
	"github.com/oakwood-commons/kvb/pkg/logger"
	"github.com/oakwood-commons/kvb/pkg/settings"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	run      *settings.Run
	vault    string
	backend  config.Backend
	database string
	theme    string
	editor   string
}

// stdinIsTerminal gates the first-run prompt. Tests replace it.
var stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// runBrowser starts the TUI. Tests replace it to avoid taking the terminal.
var runBrowser = ui.Run

func newRootCmd() *cobra.Command {
	opts := &rootOptions{run: settings.NewCliParams()}

	rootCmd := &cobra.Command{
		Use:   settings.CliBinaryName,
		Short: "Browse the secrets of an Azure Key Vault in the terminal",
		Long: "kvb lists the secrets of a key vault, filters them as you type, and drills\n" +
			"down into versions and properties. Values stay hidden until revealed.",
		Example:       "  kvb --vault my-vault\n  kvb --backend demo\n  kvb list db --format json\n  kvb versions db-password",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(cmd, opts.run)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrowse(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.run.ConfigPath, "config", "", "path to the config file (default $"+settings.EnvConfig+" or the XDG config dir)")
	flags.StringVar(&opts.vault, "vault", "", "key vault name, overrides the config file")
	flags.Var(&opts.backend, "backend", "secret store: azure|sqlite|demo")
	flags.StringVar(&opts.database, "database", "", "path to the sqlite vault (default in the XDG data dir)")
	flags.StringVar(&opts.theme, "theme", "", "color theme (see 'kvb config themes')")
	flags.BoolVar(&opts.run.NoColor, "no-color", false, "disable color output")
	flags.BoolVar(&opts.run.Debug, "debug", false, "log at debug level to "+settings.DefaultLogFile)
	flags.StringVar(&opts.run.LogFile, "log-file", "", "write logs to this file")
	rootCmd.Flags().StringVar(&opts.editor, "editor", "", "editor opened with ctrl+k, overrides the config file")

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newVersionsCmd(opts))
	rootCmd.AddCommand(newLocalCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}
}

// Execute runs the command line.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func setupLogging(cmd *cobra.Command, run *settings.Run) error {
	level := run.MinLogLevel
	if run.Debug {
		level = logger.DebugLevel
	}
	lgr, err := logger.Setup(logger.Options{Level: level, File: run.EffectiveLogFile()})
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, lgr)
	ctx = settings.IntoContext(ctx, run)
	cmd.SetContext(ctx)
	return nil
}

// configPath is --config, then $KVB_CONFIG, then the XDG location.
func (o *rootOptions) configPath() string {
	if o.run.ConfigPath != "" {
		return o.run.ConfigPath
	}
	return config.DefaultPath()
}

// loadConfig reads the config file and applies the flags the user set.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath())
	if err != nil {
		return cfg, err
	}
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("vault") {
		cfg.KeyVault = o.vault
	}
	if changed("backend") {
		cfg.Backend = o.backend
	}
	if changed("database") {
		cfg.Database = o.database
	}
	if changed("theme") {
		cfg.Theme = o.theme
	}
	if changed("editor") {
		cfg.Editor = o.editor
	}
	return cfg, nil
}

// browseLogger is the logger handed to the TUI. Without a log file it is
// discarded so nothing is written over the screen.
func browseLogger(ctx context.Context) logr.Logger {
	if settings.FromContext(ctx).EffectiveLogFile() == "" {
		return logr.Discard()
	}
	return *logger.FromContext(ctx)
}

func runBrowse(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg, err = opts.firstRun(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingVault) {
			return fmt.Errorf("%w: pass --vault or run '%s config init'", err, settings.CliBinaryName)
		}
		return err
	}

	defaults, err := ui.EmbeddedDefaultConfig()
	if err != nil {
		return err
	}
	if err := ui.InitializeThemes(cfg.Theme); err != nil {
		return err
	}

	run := settings.FromContext(ctx)
	lgr := browseLogger(ctx)
	lgr.V(1).Info("opening store", logger.VaultKey, cfg.KeyVault, logger.BackendKey, string(cfg.Backend))
	st, closeStore, err := openStore(cfg, lgr)
	if err != nil {
		return err
	}
	defer closeStore()

	sess := session.New(st, nil,
		session.WithLogger(lgr),
		session.WithSearchLimit(defaults.Search.Limit),
	)
	defer sess.Close()

	about := defaults.About
	if cfg.KeyVault != "" && cfg.Backend == config.BackendAzure {
		about.Title = fmt.Sprintf("%s · %s", about.Title, cfg.KeyVault)
	} else {
		about.Title = fmt.Sprintf("%s · %s", about.Title, cfg.Backend)
	}

	return runBrowser(ctx, sess, ui.RunOptions{
		RootOptions: ui.RootOptions{
			Logger:       lgr,
			NoColor:      run.NoColor,
			Editor:       cfg.Editor,
			About:        about,
			FlashTimeout: defaults.FlashTimeout(),
		},
	})
}

// firstRun asks for a vault name when no config file exists yet and saves
// the answer. It only prompts on an interactive terminal.
func (o *rootOptions) firstRun(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	path := o.configPath()
	if cfg.Backend != config.BackendAzure || cfg.KeyVault != "" || config.Exists(path) || !stdinIsTerminal() {
		return cfg, nil
	}
	name, err := ui.PromptVault(cmd.Context(), "", o.run.NoColor, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return cfg, err
	}
	cfg.KeyVault = name
	if err := config.Save(path, cfg); err != nil {
		return cfg, err
	}
	logger.FromContext(cmd.Context()).Info("saved config", "path", path, logger.VaultKey, name)
	return cfg, nil
}

// openStore builds the backend named by cfg. The returned func releases it.
func openStore(cfg config.Config, lgr logr.Logger) (store.Store, func(), error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		st, err := sqlite.Open(cfg.DatabasePath())
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	case config.BackendDemo:
		return store.Demo(time.Now()), func() {}, nil
	default:
		st, err := azure.New(cfg.KeyVault, lgr)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {}, nil
	}
}
