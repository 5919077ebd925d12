package oci

import (
	"fmt"
	"iter"
	"strings"

	"github.com/wippyai/oci-runtime/codec"
	"github.com/wippyai/oci-runtime/errors"
	"github.com/wippyai/oci-runtime/native"
	"github.com/wippyai/oci-runtime/resource"
)

// Rows is a single-pass stream of fetched rows. Every fetch overwrites the
// define buffers in place, so a Row and anything it lends out are valid
// only until the next call to Next.
type Rows struct {
	env   *Environment
	h     resource.Handle // define set
	owner resource.Handle // statement or cursor
	nh    native.Handle
	dc    decoder

	cols []native.Column
	bufs []*native.Buffer
	gen  uint64
	done bool
	// ownsCursor is set when owner is a cursor that Close frees.
	ownsCursor bool
}

func newRows(env *Environment, owner resource.Handle, nh native.Handle, dc decoder, ownsCursor bool) (*Rows, error) {
	drv := env.drv
	cols, err := drv.Describe(nh)
	if err != nil {
		return nil, callError(errors.PhaseFetch, "describe", err)
	}

	r := &Rows{env: env, owner: owner, nh: nh, dc: dc, cols: cols, ownsCursor: ownsCursor}
	sc := env.reg.Scope()
	defer sc.Rollback()
	if r.h, err = sc.Acquire(resource.KindDefine, owner, resource.ReleaseFunc(r.unbind)); err != nil {
		return nil, err
	}
	r.bufs = make([]*native.Buffer, len(cols))
	for i, col := range cols {
		buf := native.NewBuffer(col.Type, codec.Size(col.Type, col.Size))
		if err := drv.DefineByPos(nh, i+1, buf); err != nil {
			return nil, withPath(col.Name, callError(errors.PhaseFetch, "define", err))
		}
		r.bufs[i] = buf
	}
	sc.Commit()
	return r, nil
}

// unbind drops the define buffers. The native side keeps no reference to
// them once the statement is re-executed or freed.
func (r *Rows) unbind() error {
	r.bufs = nil
	return nil
}

func (r *Rows) release() error {
	if !r.env.reg.Alive(r.h) {
		return nil
	}
	return r.env.reg.Release(r.h)
}

// Columns describes the select list.
func (r *Rows) Columns() []native.Column {
	return append([]native.Column(nil), r.cols...)
}

// Next fetches the next row. It returns nil at the end of data and on
// every call after that.
func (r *Rows) Next() (*Row, error) {
	if r.done {
		return nil, nil
	}
	if !r.env.reg.Alive(r.h) {
		return nil, errors.Lifetime(errors.PhaseFetch, "rows")
	}
	ok, err := r.env.drv.StmtFetch(r.nh)
	r.gen++
	if err != nil {
		return nil, callError(errors.PhaseFetch, "fetch", err)
	}
	if !ok {
		r.done = true
		return nil, r.release()
	}
	return &Row{rows: r, gen: r.gen}, nil
}

// All iterates the remaining rows. Iteration stops after the first error.
func (r *Rows) All() iter.Seq2[*Row, error] {
	return func(yield func(*Row, error) bool) {
		for {
			row, err := r.Next()
			if err != nil {
				yield(nil, err)
				return
			}
			if row == nil || !yield(row, nil) {
				return
			}
		}
	}
}

// Close ends the stream early. For implicit results and cursor rows it
// also frees the cursor.
func (r *Rows) Close() error {
	r.done = true
	r.gen++
	if r.ownsCursor && r.env.reg.Alive(r.owner) {
		return r.env.reg.Release(r.owner)
	}
	return r.release()
}

// Row is the current row of a Rows. Columns are addressed by 0-based
// position.
type Row struct {
	rows *Rows
	gen  uint64
}

func (row *Row) check() error {
	r := row.rows
	if row.gen != r.gen || !r.env.reg.Alive(r.h) {
		return errors.Lifetime(errors.PhaseFetch, "row")
	}
	return nil
}

func (row *Row) column(pos int) (*native.Buffer, native.Column, error) {
	if err := row.check(); err != nil {
		return nil, native.Column{}, err
	}
	r := row.rows
	if pos < 0 || pos >= len(r.cols) {
		return nil, native.Column{}, errors.Usage(errors.PhaseFetch,
			fmt.Sprintf("column %d out of range [0, %d)", pos, len(r.cols)))
	}
	return r.bufs[pos], r.cols[pos], nil
}

// Len returns the number of columns.
func (row *Row) Len() int { return len(row.rows.cols) }

// Index returns the position of the named column, or -1.
func (row *Row) Index(name string) int {
	for i, c := range row.rows.cols {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// IsNull reports whether the column is NULL in this row.
func (row *Row) IsNull(pos int) (bool, error) {
	buf, _, err := row.column(pos)
	if err != nil {
		return false, err
	}
	return buf.IsNull(), nil
}

// Scan copies every column into dest, one pointer per column. NULL sets
// *any, *[]byte, **Lob and **Cursor destinations to nil; any other
// destination fails on NULL.
func (row *Row) Scan(dest ...any) error {
	if err := row.check(); err != nil {
		return err
	}
	if len(dest) != len(row.rows.cols) {
		return errors.Usage(errors.PhaseDecode,
			fmt.Sprintf("expected %d destinations, got %d", len(row.rows.cols), len(dest)))
	}
	for i, d := range dest {
		buf, col := row.rows.bufs[i], row.rows.cols[i]
		if buf.IsNull() {
			if err := scanNull(col, d); err != nil {
				return err
			}
			continue
		}
		if err := row.rows.dc.into(col.Name, buf, d); err != nil {
			return err
		}
	}
	return nil
}

func scanNull(col native.Column, dest any) error {
	switch d := dest.(type) {
	case *any:
		*d = nil
	case *[]byte:
		*d = nil
	case **Lob:
		*d = nil
	case **Cursor:
		*d = nil
	default:
		return errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			Path(col.Name).
			GoType(fmt.Sprintf("%T", dest)).
			NativeType(col.Type.String()).
			Detail("column is NULL").
			Build()
	}
	return nil
}

// Get decodes column pos as T. The boolean is false when the column is
// NULL, in which case the value is T's zero value and not a substitute.
func Get[T any](row *Row, pos int) (T, bool, error) {
	var v T
	buf, col, err := row.column(pos)
	if err != nil {
		return v, false, err
	}
	if buf.IsNull() {
		return v, false, nil
	}
	if err := row.rows.dc.into(col.Name, buf, &v); err != nil {
		return v, false, err
	}
	return v, true, nil
}

// Text returns a view of a character or RAW column that borrows the
// define buffer instead of copying it.
func (row *Row) Text(pos int) (Text, error) {
	_, col, err := row.column(pos)
	if err != nil {
		return Text{}, err
	}
	if !col.Type.IsText() && col.Type != native.TypeRaw && col.Type != native.TypeLongRaw {
		return Text{}, errors.TypeMismatch(errors.PhaseDecode, []string{col.Name}, "oci.Text", col.Type.String())
	}
	return Text{row: row, pos: pos}, nil
}

// Text is a borrowed column value. It fails with a lifetime error once
// its Rows has moved past the row it came from.
type Text struct {
	row *Row
	pos int
}

// Bytes returns the column bytes without copying, nil for NULL. The slice
// is overwritten by the next fetch.
func (t Text) Bytes() ([]byte, error) {
	if t.row == nil {
		return nil, errors.Usage(errors.PhaseDecode, "zero Text")
	}
	buf, _, err := t.row.column(t.pos)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String copies the column as text.
func (t Text) String() (string, error) {
	b, err := t.Bytes()
	if err != nil {
		return "", err
	}
	return codec.DecodeText(b)
}
