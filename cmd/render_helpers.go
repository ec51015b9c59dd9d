package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/kvb/internal/store"
)

const (
	formatTable = "table"
	formatJSON  = "json"

	dateTimeLayout = "2006-01-02 15:04:05"
	dateTimeWidth  = 19
	enabledWidth   = 7
)

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
	}
}

type secretOutput struct {
	Name        string            `json:"name"`
	Enabled     bool              `json:"enabled"`
	ContentType string            `json:"content_type,omitempty"`
	Created     string            `json:"created,omitempty"`
	Updated     string            `json:"updated,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
}

type versionOutput struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Enabled     bool              `json:"enabled"`
	ContentType string            `json:"content_type,omitempty"`
	Created     string            `json:"created,omitempty"`
	Updated     string            `json:"updated,omitempty"`
	Expires     string            `json:"expires,omitempty"`
	NotBefore   string            `json:"not_before,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
}

func rfc3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func dateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateTimeLayout)
}

func tagList(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + tags[k]
	}
	return strings.Join(parts, ", ")
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func renderSecretsJSON(w io.Writer, secrets []store.Secret) error {
	out := make([]secretOutput, 0, len(secrets))
	for _, s := range secrets {
		out = append(out, secretOutput{
			Name:        s.Name,
			Enabled:     s.Enabled,
			ContentType: s.ContentType,
			Created:     rfc3339(s.Created),
			Updated:     rfc3339(s.Updated),
			Tags:        s.Tags,
		})
	}
	return writeJSON(w, out)
}

func renderVersionsJSON(w io.Writer, versions []store.Version) error {
	out := make([]versionOutput, 0, len(versions))
	for _, v := range versions {
		out = append(out, versionOutput{
			Name:        v.Name,
			Version:     v.ID,
			Enabled:     v.Enabled,
			ContentType: v.ContentType,
			Created:     rfc3339(v.Created),
			Updated:     rfc3339(v.Updated),
			Expires:     rfc3339(v.Expires),
			NotBefore:   rfc3339(v.NotBefore),
			Tags:        v.Tags,
		})
	}
	return writeJSON(w, out)
}

// clampWidth keeps the widest value of a column between lo and hi.
func clampWidth(values []string, lo, hi int) int {
	w := lo
	for _, v := range values {
		if n := runewidth.StringWidth(v); n > w {
			w = n
		}
	}
	if w > hi {
		w = hi
	}
	return w
}

// secretColumns splits termWidth between the name, content type and tags
// columns. Dates and the enabled flag keep their natural width.
func secretColumns(termWidth int, secrets []store.Secret) (name, contentType, tags int) {
	const columns = 5
	available := termWidth - columns*3 - 1

	names := make([]string, len(secrets))
	types := make([]string, len(secrets))
	for i, s := range secrets {
		names[i] = s.Name
		types[i] = s.ContentType
	}
	name = clampWidth(names, 10, 60)
	contentType = clampWidth(types, 12, 30)
	tags = available - name - contentType - dateTimeWidth - enabledWidth
	if tags < 10 {
		tags = 10
	}
	return name, contentType, tags
}

func newTableWriter(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderSecretsTable(w io.Writer, termWidth int, secrets []store.Secret) {
	t := newTableWriter(w)
	nameW, typeW, tagsW := secretColumns(termWidth, secrets)

	t.AppendHeader(table.Row{"Name", "Updated On", "Enabled", "Content Type", "Tags"})
	for _, s := range secrets {
		t.AppendRow(table.Row{
			truncate(s.Name, nameW),
			dateTime(s.Updated),
			s.Enabled,
			truncate(s.ContentType, typeW),
			truncate(tagList(s.Tags), tagsW),
		})
	}
	t.Render()
}

func renderVersionsTable(w io.Writer, termWidth int, versions []store.Version) {
	t := newTableWriter(w)
	const columns = 5
	// Version IDs are fixed width; whatever is left goes to the tags.
	tagsW := termWidth - columns*3 - 1 - 32 - 2*dateTimeWidth - enabledWidth
	if tagsW < 10 {
		tagsW = 10
	}

	t.AppendHeader(table.Row{"Version", "Created On", "Expires On", "Enabled", "Tags"})
	for _, v := range versions {
		t.AppendRow(table.Row{
			v.ID,
			dateTime(v.Created),
			dateTime(v.Expires),
			v.Enabled,
			truncate(tagList(v.Tags), tagsW),
		})
	}
	t.Render()
}
