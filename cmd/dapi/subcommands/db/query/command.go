package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/designsafe-ci/dapi/cmd/dapi/style"
	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/common"
	"github.com/designsafe-ci/dapi/pkg/config/dapienv"
	"github.com/designsafe-ci/dapi/pkg/dapi"
	"github.com/designsafe-ci/dapi/pkg/db"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Format string `flag:"format" alias:"f" metavar:"table|json|tsv" help:"output format"`
}

const (
	ARG_DB   = "DB"
	ARG_SQL  = "SQL"
	ARG_ARGS = "ARG"

	FormatTable = "table"
	FormatJSON  = "json"
	FormatTSV   = "tsv"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Run a SQL query on a DesignSafe research database.",
		Flags{Format: FormatTable},
		flarc.Args{
			{Name: ARG_DB, Required: true, Help: "database shorthand: " + strings.Join(db.Shorthands(), ", ")},
			{Name: ARG_SQL, Required: true, Help: "SQL. Use ? as placeholders for ARGs"},
			{Name: ARG_ARGS, Required: false, Repeatable: true, Help: "values bound to placeholders"},
		},
		common.NewTask[Flags](Task),
		flarc.WithDescription(`
Run a SQL query on a DesignSafe research database, and print the result.

Connection parameters of each database can be overridden by environment
variables, like NGL_DB_USER, NGL_DB_PASSWORD, NGL_DB_HOST and NGL_DB_PORT.
`),
	)
}

func Task(
	ctx context.Context,
	logger *log.Logger,
	_ dapienv.DapiEnv,
	client *dapi.Client,
	cl flarc.Commandline[Flags],
	_ []any,
) error {
	args := cl.Args()
	format := cl.Flags().Format
	switch format {
	case FormatTable, FormatJSON, FormatTSV:
	default:
		return fmt.Errorf("%w: unknown format '%s'", flarc.ErrUsage, format)
	}

	database, err := client.DB.Get(ctx, args[ARG_DB][0])
	if err != nil {
		return err
	}
	params := make([]any, 0, len(args[ARG_ARGS]))
	for _, a := range args[ARG_ARGS] {
		params = append(params, a)
	}
	table, err := database.Query(ctx, args[ARG_SQL][0], params...)
	if err != nil {
		return err
	}
	logger.Printf("%d rows", len(table.Rows))

	switch format {
	case FormatJSON:
		return writeJSON(cl.Stdout(), table)
	case FormatTSV:
		return writeTSV(cl.Stdout(), table)
	default:
		rows := make([][]string, 0, len(table.Rows))
		for _, row := range table.Rows {
			rows = append(rows, cells(row))
		}
		_, err := fmt.Fprintln(cl.Stdout(), style.Table(table.Columns, rows))
		return err
	}
}

func cells(row []any) []string {
	cs := make([]string, 0, len(row))
	for _, v := range row {
		if v == nil {
			cs = append(cs, "NULL")
			continue
		}
		cs = append(cs, fmt.Sprint(v))
	}
	return cs
}

func writeTSV(w io.Writer, table *db.Table) error {
	if _, err := fmt.Fprintln(w, strings.Join(table.Columns, "\t")); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if _, err := fmt.Fprintln(w, strings.Join(cells(row), "\t")); err != nil {
			return err
		}
	}
	return nil
}

// writeJSON writes records as an array of objects, keeping keys in column order.
func writeJSON(w io.Writer, table *db.Table) error {
	buf := new(bytes.Buffer)
	buf.WriteString("[")
	for i, rec := range table.Records() {
		if 0 < i {
			buf.WriteString(",")
		}
		buf.WriteString("{")
		for el := rec.Front(); el != nil; el = el.Next() {
			if el != rec.Front() {
				buf.WriteString(",")
			}
			k, err := json.Marshal(el.Key)
			if err != nil {
				return err
			}
			v, err := json.Marshal(el.Value)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteString(":")
			buf.Write(v)
		}
		buf.WriteString("}")
	}
	buf.WriteString("]")

	out := new(bytes.Buffer)
	if err := json.Indent(out, buf.Bytes(), "", "    "); err != nil {
		return err
	}
	out.WriteString("\n")
	_, err := out.WriteTo(w)
	return err
}
