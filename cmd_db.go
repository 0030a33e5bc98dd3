package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nicorema/wedding/internal/database"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func (a *app) dbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect or reset the SQLite database",
	}
	cmd.AddCommand(a.dbViewCmd(), a.dbFlushCmd())
	return cmd
}

func (a *app) openDB() (*sql.DB, error) {
	db, err := database.OpenAndMigrate(a.cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func (a *app) dbViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view [table...]",
		Short: "Print table contents, newest rows first",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			tables, err := database.Tables(ctx, db)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				for _, name := range args {
					if !slices.Contains(tables, name) {
						return fmt.Errorf("unknown table %q (have %s)", name, strings.Join(tables, ", "))
					}
				}
				tables = args
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database: %s\n", a.cfg.Database.Path)
			for _, name := range tables {
				dump, err := database.Dump(ctx, db, name)
				if err != nil {
					return err
				}
				renderDump(out, dump)
			}
			return nil
		},
	}
}

func renderDump(w io.Writer, d *database.TableDump) {
	fmt.Fprintln(w)
	if len(d.Rows) == 0 {
		fmt.Fprintf(w, "%s: (empty)\n", d.Name)
		return
	}
	fmt.Fprintf(w, "%s: %d row(s)\n", d.Name, len(d.Rows))
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(d.Columns...).
		Rows(d.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func (a *app) dbFlushCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Delete every row from every table, keeping the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !yes && !confirm(cmd.InOrStdin(), out) {
				fmt.Fprintln(out, "Flush cancelled.")
				return nil
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			deleted, err := database.Flush(cmd.Context(), db)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(deleted))
			for name := range deleted {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				fmt.Fprintf(out, "%s: deleted %d row(s)\n", name, deleted[name])
			}
			fmt.Fprintln(out, "Database flushed; schema preserved.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "This deletes ALL data from all tables. Continue? (yes/no): ")
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "yes", "y":
		return true
	}
	return false
}
