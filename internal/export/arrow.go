// Package export writes filtered views in columnar interchange formats.
package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"supplydash/internal/engine"
)

// ContentType of an Arrow IPC stream.
const ContentType = "application/vnd.apache.arrow.stream"

// Schema maps the table columns to Arrow fields: numeric columns become
// nullable float64, everything else nullable utf8.
func Schema(t *engine.Table) *arrow.Schema {
	cols := t.Columns()
	fields := make([]arrow.Field, len(cols))
	for i, col := range cols {
		typ := arrow.DataType(arrow.BinaryTypes.String)
		if engine.IsNumericColumn(col) {
			typ = arrow.PrimitiveTypes.Float64
		}
		fields[i] = arrow.Field{Name: col, Type: typ, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// WriteArrow writes the rows of a view as a single-batch Arrow IPC stream.
func WriteArrow(w io.Writer, v engine.View) error {
	t := v.Table()
	mem := memory.NewGoAllocator()
	schema := Schema(t)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for f, col := range t.Columns() {
		switch fb := b.Field(f).(type) {
		case *array.Float64Builder:
			fb.Reserve(v.Len())
			for i := 0; i < v.Len(); i++ {
				if x, ok := v.Number(col, i); ok {
					fb.Append(x)
				} else {
					fb.AppendNull()
				}
			}
		case *array.StringBuilder:
			fb.Reserve(v.Len())
			for i := 0; i < v.Len(); i++ {
				if s, ok := v.Category(col, i); ok {
					fb.Append(s)
				} else {
					fb.AppendNull()
				}
			}
		default:
			return fmt.Errorf("unsupported builder %T for column %q", fb, col)
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	wr := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err := wr.Write(rec); err != nil {
		_ = wr.Close()
		return fmt.Errorf("write arrow record: %w", err)
	}
	return wr.Close()
}
