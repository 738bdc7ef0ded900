package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/koustreak/rowcursor/internal/cursor"
	"github.com/koustreak/rowcursor/internal/database"
	"github.com/koustreak/rowcursor/internal/errs"
)

type queryOptions struct {
	args   []string
	format string
}

func newQueryCmd(a *app) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query SQL",
		Short: "Run a query and print its rows",
		Example: `  rowcursor query "SELECT id, name FROM users WHERE age > ?" --arg int:30
  rowcursor query "SELECT * FROM events" --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.format {
			case "table", "json":
			default:
				return errs.Newf(errs.ErrKindInvalidInput, "unknown format %q", opts.format)
			}
			values, err := parseArgs(opts.args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			return a.withConn(ctx, func(conn database.Connection) error {
				cols, rows, err := database.QueryRows(ctx, conn, args[0], values...)
				if err != nil {
					return err
				}
				if opts.format == "json" {
					return renderJSON(cmd.OutOrStdout(), cols, rows)
				}
				renderTable(cmd.OutOrStdout(), cols, rows)
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVarP(&opts.args, "arg", "a", nil, "typed bind argument, repeatable")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "output format: table, json")

	return cmd
}

func renderTable(w io.Writer, cols []string, rows []*cursor.Row) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range rows {
		out := make(table.Row, row.Len())
		for i := range out {
			out[i] = formatCell(row.Values[i])
		}
		t.AppendRow(out)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

func formatCell(c cursor.Cell) string {
	switch c.Type {
	case cursor.FieldNull:
		return "NULL"
	case cursor.FieldInteger:
		return strconv.FormatInt(c.Value.(int64), 10)
	case cursor.FieldFloat:
		return strconv.FormatFloat(c.Value.(float64), 'g', -1, 64)
	case cursor.FieldBlob:
		return "x'" + hex.EncodeToString(c.Value.([]byte)) + "'"
	default:
		return fmt.Sprint(c.Value)
	}
}

// renderJSON writes one object per row. Blobs are hex strings and a
// duplicated column name keeps its first value.
func renderJSON(w io.Writer, cols []string, rows []*cursor.Row) error {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]any, len(cols))
		for i, col := range cols {
			if _, dup := obj[col]; dup {
				continue
			}
			v := row.Get(i)
			if b, ok := v.([]byte); ok {
				v = hex.EncodeToString(b)
			}
			obj[col] = v
		}
		out = append(out, obj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
