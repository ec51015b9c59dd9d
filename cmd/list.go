package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/kvb/internal/filter"
	"github.com/oakwood-commons/kvb/internal/limiter"
	"github.com/oakwood-commons/kvb/internal/session"
	"github.com/oakwood-commons/kvb/internal/store"
	"github.com/oakwood-commons/kvb/internal/ui"
	"github.com/oakwood-commons/kvb/pkg/logger"
)

// addListingFlags registers the flags shared by list and versions.
func addListingFlags(cmd *cobra.Command, format *string, lim *limiter.Config) {
	cmd.Flags().StringVar(format, "format", formatTable, "Output format: table or json")
	cmd.Flags().IntVar(&lim.Limit, "limit", 0, "Limit total number of records displayed")
	cmd.Flags().IntVar(&lim.Offset, "offset", 0, "Skip the first N records")
	cmd.Flags().IntVar(&lim.Tail, "tail", 0, "Show the last N records (mutually exclusive with --limit; ignores --offset)")
}

// openConfiguredStore loads the config, validates it and opens its backend.
func (o *rootOptions) openConfiguredStore(cmd *cobra.Command) (store.Store, func(), error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	lgr := logger.FromContext(cmd.Context())
	lgr.V(1).Info("opening store", logger.VaultKey, cfg.KeyVault, logger.BackendKey, string(cfg.Backend))
	return openStore(cfg, *lgr)
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		lim    limiter.Config
	)

	cmd := &cobra.Command{
		Use:   "list [query]",
		Short: "List secrets, optionally filtered by a search term",
		Long: "List prints the secrets of the vault. With a query it keeps only the names\n" +
			"that contain it, using the same search as the interactive filter.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			if err := lim.Validate(); err != nil {
				return err
			}

			st, closeStore, err := opts.openConfiguredStore(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			secrets, err := searchSecrets(cmd, st, query)
			if err != nil {
				return err
			}
			secrets = limiter.Apply(lim, secrets)

			if format == formatJSON {
				return renderSecretsJSON(cmd.OutOrStdout(), secrets)
			}
			renderSecretsTable(cmd.OutOrStdout(), terminalWidth(), secrets)
			return nil
		},
	}

	addListingFlags(cmd, &format, &lim)
	return cmd
}

// searchSecrets loads st into a session and applies query through its filter.
func searchSecrets(cmd *cobra.Command, st store.Store, query string) ([]store.Secret, error) {
	defaults, err := ui.EmbeddedDefaultConfig()
	if err != nil {
		return nil, err
	}
	sess := session.New(st, nil,
		session.WithLogger(*logger.FromContext(cmd.Context())),
		session.WithSearchLimit(defaults.Search.Limit),
	)
	defer sess.Close()

	if err := sess.Apply(sess.Load()(cmd.Context())); err != nil {
		return nil, err
	}
	if query == "" {
		return sess.Visible(), nil
	}

	sess.Filter().InsertString(query)
	switch sess.Filter().Submit() {
	case filter.NoResults:
		return nil, errors.New(filter.NoResultsMessage(query))
	case filter.MissingQuery:
		return nil, errors.New(filter.MissingQueryMessage)
	}
	if err := sess.Filter().Err(); err != nil {
		return nil, err
	}
	return sess.Visible(), nil
}

func newVersionsCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		lim    limiter.Config
	)

	cmd := &cobra.Command{
		Use:   "versions <name>",
		Short: "List the versions of a secret, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			if err := lim.Validate(); err != nil {
				return err
			}

			st, closeStore, err := opts.openConfiguredStore(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			versions, err := st.ListVersions(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("secret %q not found", args[0])
			}
			if err != nil {
				return err
			}
			versions = limiter.Apply(lim, versions)

			if format == formatJSON {
				return renderVersionsJSON(cmd.OutOrStdout(), versions)
			}
			renderVersionsTable(cmd.OutOrStdout(), terminalWidth(), versions)
			return nil
		},
	}

	addListingFlags(cmd, &format, &lim)
	return cmd
}
