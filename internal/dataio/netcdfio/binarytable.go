package netcdfio

import (
	"log"

	"github.com/ctessum/cdf"

	"github.com/banshee-data/rapio/internal/grid"
)

// BinaryTableSpecializer writes tabular DataTypes: each declared table
// becomes one dimension with one typed variable per column. The classic
// format has no unsigned or string variable types, so ushort widens to
// int, uchar to short, and string columns are skipped with a warning.
type BinaryTableSpecializer struct{}

// Read is unimplemented for tables, matching the legacy reader; it
// returns an empty table so callers can distinguish "table file" from
// "unreadable file".
func (s *BinaryTableSpecializer) Read(f *cdf.File, keys map[string]string) (grid.DataType, error) {
	log.Printf("netcdf: binary table reading is unimplemented, returning empty table")
	return grid.NewBinaryTable(), nil
}

// Write encodes the table.
func (s *BinaryTableSpecializer) Write(dt grid.DataType, w *writeSession, keys map[string]string) error {
	table, ok := dt.(interface {
		grid.DataType
		TableInfos() []grid.TableInfo
		StringColumn(string) ([]string, bool)
		FloatColumn(string) ([]float32, bool)
		UShortColumn(string) ([]uint16, bool)
		UCharColumn(string) ([]uint8, bool)
	})
	if !ok {
		return errNotATable(dt)
	}

	for _, info := range table.TableInfos() {
		w.addDim(info.Name, info.Size)
	}
	for _, info := range table.TableInfos() {
		for i, col := range info.ColumnNames {
			attrs := grid.NewAttributeList()
			if i < len(info.ColumnUnits) {
				attrs.PutString(grid.UnitsAttr, info.ColumnUnits[i])
			}
			switch info.ColumnTypes[i] {
			case grid.ColFloat:
				data, _ := table.FloatColumn(col)
				w.addVar(col, []string{info.Name}, attrs, padFloats(data, info.Size))
			case grid.ColUShort:
				data, _ := table.UShortColumn(col)
				widened := make([]int32, info.Size)
				for j, v := range data {
					if j >= info.Size {
						break
					}
					widened[j] = int32(v)
				}
				w.addVar(col, []string{info.Name}, attrs, widened)
			case grid.ColUChar:
				data, _ := table.UCharColumn(col)
				widened := make([]int16, info.Size)
				for j, v := range data {
					if j >= info.Size {
						break
					}
					widened[j] = int16(v)
				}
				w.addVar(col, []string{info.Name}, attrs, widened)
			case grid.ColString:
				log.Printf("netcdf: skipping string column %q, not representable in classic format", col)
			}
		}
	}

	globals := dt.GlobalAttributes()
	globals.PutString(grid.AttrDataType, dt.DataType())
	globals.PutString(grid.AttrTypeName, dt.TypeName())
	globals.PutDouble(grid.AttrLatitude, dt.Location().LatDegs)
	globals.PutDouble(grid.AttrLongitude, dt.Location().LonDegs)
	globals.PutDouble(grid.AttrHeight, dt.Location().HeightKM*1000.0)
	globals.PutLong(grid.AttrTime, dt.Time().Epoch)
	globals.PutDouble(grid.AttrFractionalTime, dt.Time().Fractional)
	return w.commit(globals)
}

func padFloats(data []float32, size int) []float32 {
	if len(data) == size {
		return data
	}
	out := make([]float32, size)
	copy(out, data)
	return out
}

type notATableError struct{ tag string }

func (e notATableError) Error() string {
	return "netcdf: datatype " + e.tag + " is not a binary table"
}

func errNotATable(dt grid.DataType) error {
	return notATableError{tag: dt.DataType()}
}
