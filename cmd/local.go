package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/kvb/internal/store/sqlite"
	"github.com/oakwood-commons/kvb/pkg/logger"
)

func newLocalCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "local",
		Short: "Manage the local sqlite vault",
		Long: "The local vault is a sqlite database browsed with --backend sqlite.\n" +
			"Use it to try kvb without an Azure subscription.",
	}
	cmd.AddCommand(newLocalSetCmd(opts))
	return cmd
}

func newLocalSetCmd(opts *rootOptions) *cobra.Command {
	var (
		filePath    string
		contentType string
		tags        map[string]string
		disabled    bool
		expires     string
		notBefore   string
	)

	cmd := &cobra.Command{
		Use:   "set <name> [value]",
		Short: "Write a new version of a secret to the local vault",
		Long: "Set stores value as the newest version of name. Without a value argument\n" +
			"the content is read from --file or stdin.",
		Example: "  kvb local set db-password s3cret\n  echo -n s3cret | kvb local set db-password --tag env=prod",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			put := sqlite.PutOptions{
				ContentType: contentType,
				Disabled:    disabled,
				Tags:        tags,
			}
			var err error
			if put.Expires, err = parseWhen(expires); err != nil {
				return fmt.Errorf("invalid --expires: %w", err)
			}
			if put.NotBefore, err = parseWhen(notBefore); err != nil {
				return fmt.Errorf("invalid --not-before: %w", err)
			}

			var value string
			if len(args) == 2 {
				value = args[1]
			} else if value, err = readContent(cmd, filePath); err != nil {
				return err
			}

			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			path := cfg.DatabasePath()
			st, err := sqlite.Open(path)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			v, err := st.Put(cmd.Context(), args[0], value, put)
			if err != nil {
				return err
			}
			logger.FromContext(cmd.Context()).V(1).Info("stored secret version", "name", v.Name, "version", v.ID, "database", path)
			fmt.Fprintln(cmd.OutOrStdout(), v.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Read the value from a file instead of stdin")
	cmd.Flags().StringVar(&contentType, "content-type", "", "Content type recorded with the version")
	cmd.Flags().StringToStringVar(&tags, "tag", nil, "Tag as key=value (repeatable)")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Store the version disabled")
	cmd.Flags().StringVar(&expires, "expires", "", "Expiry as RFC 3339 time or a duration from now (e.g. 720h)")
	cmd.Flags().StringVar(&notBefore, "not-before", "", "Activation as RFC 3339 time or a duration from now")
	return cmd
}

// readContent reads the secret value from filePath or stdin. A single
// trailing newline is dropped so `echo value |` stores value.
func readContent(cmd *cobra.Command, filePath string) (string, error) {
	if filePath != "" {
		b, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	if stdinIsTerminal() {
		fmt.Fprintln(cmd.ErrOrStderr(), "Enter the value (Ctrl-D when done):")
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	s := strings.TrimSuffix(string(b), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}

// parseWhen accepts an RFC 3339 timestamp or a duration relative to now.
// Empty means unset.
func parseWhen(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return time.Now().Add(d).UTC(), nil
	}
	return time.Parse(time.RFC3339, s)
}
