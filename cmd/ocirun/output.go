package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wippyai/oci-runtime/native"
	"github.com/wippyai/oci-runtime/oci"
)

// result is everything one statement produced.
type result struct {
	sets     []*resultSet
	affected int64
	query    bool
	plsql    bool
	ddl      bool
}

type resultSet struct {
	columns []string
	types   []string
	rows    [][]string
}

const nullText = "NULL"

func execute(conn *oci.Connection, text string) (*result, error) {
	stmt, err := conn.Prepare(text)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	res := &result{query: stmt.IsQuery(), plsql: stmt.IsPLSQL()}
	switch stmt.Type() {
	case native.StmtCreate, native.StmtDrop, native.StmtAlter:
		res.ddl = true
	}
	if res.query {
		rows, err := stmt.Query()
		if err != nil {
			return nil, err
		}
		rs, err := collect(rows)
		if err != nil {
			return nil, err
		}
		res.sets = append(res.sets, rs)
		return res, nil
	}

	if res.affected, err = stmt.Execute(); err != nil {
		return nil, err
	}
	if !res.plsql {
		return res, nil
	}
	for {
		rows, err := stmt.NextResult()
		if err != nil {
			return nil, err
		}
		if rows == nil {
			return res, nil
		}
		rs, err := collect(rows)
		if err != nil {
			return nil, err
		}
		res.sets = append(res.sets, rs)
	}
}

func collect(rows *oci.Rows) (*resultSet, error) {
	defer rows.Close()

	rs := &resultSet{}
	for _, c := range rows.Columns() {
		rs.columns = append(rs.columns, c.Name)
		rs.types = append(rs.types, c.Type.String())
	}
	for row, err := range rows.All() {
		if err != nil {
			return nil, err
		}
		vals := make([]string, row.Len())
		for i := range vals {
			s, ok, err := oci.Get[string](row, i)
			if err != nil {
				return nil, err
			}
			if !ok {
				s = nullText
			}
			vals[i] = s
		}
		rs.rows = append(rs.rows, vals)
	}
	return rs, nil
}

// writeTSV prints a header line and one tab-separated line per row.
// Tabs and newlines inside values are escaped.
func writeTSV(w io.Writer, rs *resultSet) error {
	esc := strings.NewReplacer("\\", "\\\\", "\t", "\\t", "\n", "\\n", "\r", "\\r")
	line := func(vals []string) error {
		out := make([]string, len(vals))
		for i, v := range vals {
			out[i] = esc.Replace(v)
		}
		_, err := fmt.Fprintln(w, strings.Join(out, "\t"))
		return err
	}
	if err := line(rs.columns); err != nil {
		return err
	}
	for _, r := range rs.rows {
		if err := line(r); err != nil {
			return err
		}
	}
	return nil
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	nullStyle = cellStyle.
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

func renderTable(rs *resultSet) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(rs.columns...).
		Rows(rs.rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(rs.rows) && col < len(rs.rows[row]) && rs.rows[row][col] == nullText:
				return nullStyle
			}
			return cellStyle
		})
	return t.String()
}

func rowCount(n int64) string {
	if n == 1 {
		return "1 row"
	}
	return fmt.Sprintf("%d rows", n)
}

// printResult writes res to w, styled when the output is a terminal.
func printResult(w io.Writer, res *result, styled bool) error {
	for i, rs := range res.sets {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if styled {
			fmt.Fprintln(w, renderTable(rs))
			fmt.Fprintln(w, countStyle.Render(rowCount(int64(len(rs.rows)))+" selected"))
			continue
		}
		if err := writeTSV(w, rs); err != nil {
			return err
		}
	}
	if res.query {
		return nil
	}
	msg := rowCount(res.affected) + " affected"
	switch {
	case res.plsql:
		msg = "PL/SQL procedure successfully completed."
	case res.ddl:
		msg = "Statement processed."
	}
	if styled {
		msg = countStyle.Render(msg)
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}
