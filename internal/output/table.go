package output

import (
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/openstay/openstay-release/internal/build"
	"github.com/openstay/openstay-release/internal/history"
	"github.com/openstay/openstay-release/internal/hosting"
)

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

// WriteVariablesTable renders variables as a two-column table sorted by
// name.
func WriteVariablesTable(w io.Writer, title string, variables map[string]string) {
	keys := make([]string, 0, len(variables))
	for k := range variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := newTable(w, title)
	t.AppendHeader(table.Row{"Name", "Value"})
	for _, k := range keys {
		t.AppendRow(table.Row{k, variables[k]})
	}
	t.Render()
}

// WriteHistoryTable renders release log records, newest first.
func WriteHistoryTable(w io.Writer, records []history.ReleaseRecord) {
	t := newTable(w, "Release history")
	t.AppendHeader(table.Row{"ID", "When", "Kind", "Version", "Previous", "Tag", "Target", "Reason"})
	for _, r := range records {
		t.AppendRow(table.Row{
			r.ID,
			r.CreatedAt.Local().Format(time.DateTime),
			string(r.Kind),
			r.Version,
			r.Previous,
			r.Tag,
			r.Target,
			r.Reason,
		})
	}
	if len(records) == 0 {
		t.AppendRow(table.Row{"", "no releases recorded"})
	}
	t.Render()
}

// WriteDeployTable renders per-target upload results.
func WriteDeployTable(w io.Writer, results []hosting.Result) {
	t := newTable(w, "Deployments")
	t.AppendHeader(table.Row{"Target", "Bucket", "Prefix", "Objects", "Bytes"})
	var objects, bytes int64
	for _, r := range results {
		t.AppendRow(table.Row{r.Target, r.Bucket, r.Prefix, r.Objects, r.Bytes})
		objects += r.Objects
		bytes += r.Bytes
	}
	t.AppendFooter(table.Row{"Total", "", "", objects, bytes})
	t.Render()
}

// WriteTransitionsTable renders the state changes of a build.
func WriteTransitionsTable(w io.Writer, transitions []build.Transition) {
	t := newTable(w, "Build states")
	t.AppendHeader(table.Row{"#", "From", "To", "Reason"})
	for i, tr := range transitions {
		t.AppendRow(table.Row{i + 1, tr.From.String(), tr.To.String(), tr.Reason})
	}
	t.Render()
}
