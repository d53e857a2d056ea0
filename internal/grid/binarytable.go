package grid

import "log"

// ColumnType tags the storage of a BinaryTable column.
type ColumnType string

// Column types the table formats round trip.
const (
	ColString ColumnType = "string"
	ColFloat  ColumnType = "float"
	ColUShort ColumnType = "ushort"
	ColUChar  ColumnType = "uchar"
)

// TableInfo declares one table of a BinaryTable: its name, row count and
// column layout. Writers turn each TableInfo into one file dimension with
// one typed variable per column.
type TableInfo struct {
	Name        string
	Size        int
	ColumnNames []string
	ColumnUnits []string
	ColumnTypes []ColumnType
}

// BinaryTable is the tabular DataType: a set of declared tables with typed
// column vectors fetched by name. Columns shorter or longer than their
// declared row count are padded or truncated with a warning.
type BinaryTable struct {
	dataType    string
	typeName    string
	units       string
	location    LLH
	time        Time
	readFactory string
	attrs       *AttributeList

	infos []TableInfo

	stringCols map[string][]string
	floatCols  map[string][]float32
	ushortCols map[string][]uint16
	ucharCols  map[string][]uint8
}

// NewBinaryTable returns an empty table tagged "BinaryTable".
func NewBinaryTable() *BinaryTable {
	return &BinaryTable{
		dataType:   "BinaryTable",
		attrs:      NewAttributeList(),
		stringCols: make(map[string][]string),
		floatCols:  make(map[string][]float32),
		ushortCols: make(map[string][]uint16),
		ucharCols:  make(map[string][]uint8),
	}
}

// DataType returns the data-type tag.
func (b *BinaryTable) DataType() string { return b.dataType }

// SetDataType sets the data-type tag; specialisations use their own.
func (b *BinaryTable) SetDataType(t string) { b.dataType = t }

// TypeName returns the product name.
func (b *BinaryTable) TypeName() string { return b.typeName }

// SetTypeName sets the product name.
func (b *BinaryTable) SetTypeName(t string) { b.typeName = t }

// Units returns the units of the table values.
func (b *BinaryTable) Units() string { return b.units }

// SetUnits sets the units of the table values.
func (b *BinaryTable) SetUnits(u string) { b.units = u }

// Location returns the table's reference location.
func (b *BinaryTable) Location() LLH { return b.location }

// SetLocation sets the reference location.
func (b *BinaryTable) SetLocation(l LLH) { b.location = l }

// Time returns the table's timestamp.
func (b *BinaryTable) Time() Time { return b.time }

// SetTime sets the table's timestamp.
func (b *BinaryTable) SetTime(t Time) { b.time = t }

// ReadFactory returns the factory key that read this table.
func (b *BinaryTable) ReadFactory() string { return b.readFactory }

// SetReadFactory records the factory key.
func (b *BinaryTable) SetReadFactory(f string) { b.readFactory = f }

// GlobalAttributes returns the global attribute list.
func (b *BinaryTable) GlobalAttributes() *AttributeList { return b.attrs }

// PostRead is a no-op; tables carry no sparse encoding.
func (b *BinaryTable) PostRead(keys map[string]string) {}

// PreWrite is a no-op.
func (b *BinaryTable) PreWrite(keys map[string]string) {}

// PostWrite is a no-op.
func (b *BinaryTable) PostWrite(keys map[string]string) {}

// DeclareTable appends a TableInfo.
func (b *BinaryTable) DeclareTable(info TableInfo) { b.infos = append(b.infos, info) }

// TableInfos returns the declared tables in order.
func (b *BinaryTable) TableInfos() []TableInfo { return b.infos }

func (b *BinaryTable) declaredSize(column string) (int, bool) {
	for _, info := range b.infos {
		for _, name := range info.ColumnNames {
			if name == column {
				return info.Size, true
			}
		}
	}
	return 0, false
}

// fitLength pads or truncates a column to its declared row count with a
// warning, matching the legacy reader behavior for short rows.
func fitLength[T any](b *BinaryTable, name string, col []T) []T {
	want, ok := b.declaredSize(name)
	if !ok || len(col) == want {
		return col
	}
	log.Printf("binarytable: column %q has row length %d, padding/truncating to declared %d",
		name, len(col), want)
	out := make([]T, want)
	copy(out, col)
	return out
}

// SetStringColumn stores a string column.
func (b *BinaryTable) SetStringColumn(name string, col []string) {
	b.stringCols[name] = fitLength(b, name, col)
}

// SetFloatColumn stores a float column.
func (b *BinaryTable) SetFloatColumn(name string, col []float32) {
	b.floatCols[name] = fitLength(b, name, col)
}

// SetUShortColumn stores an unsigned-short column.
func (b *BinaryTable) SetUShortColumn(name string, col []uint16) {
	b.ushortCols[name] = fitLength(b, name, col)
}

// SetUCharColumn stores an unsigned-char column.
func (b *BinaryTable) SetUCharColumn(name string, col []uint8) {
	b.ucharCols[name] = fitLength(b, name, col)
}

// StringColumn fetches a string column by name.
func (b *BinaryTable) StringColumn(name string) ([]string, bool) {
	c, ok := b.stringCols[name]
	return c, ok
}

// FloatColumn fetches a float column by name.
func (b *BinaryTable) FloatColumn(name string) ([]float32, bool) {
	c, ok := b.floatCols[name]
	return c, ok
}

// UShortColumn fetches an unsigned-short column by name.
func (b *BinaryTable) UShortColumn(name string) ([]uint16, bool) {
	c, ok := b.ushortCols[name]
	return c, ok
}

// UCharColumn fetches an unsigned-char column by name.
func (b *BinaryTable) UCharColumn(name string) ([]uint8, bool) {
	c, ok := b.ucharCols[name]
	return c, ok
}

// RObsBinaryTable is the merger stage-one raw observation table: one table
// of per-observation columns plus radar identity fields, read from the
// flat MRMS raw format.
type RObsBinaryTable struct {
	BinaryTable

	RadarName     string
	VCP           int
	ElevationDegs float64

	X                []uint16
	Y                []uint16
	Z                []uint8
	Value            []float32
	ScaledDist       []uint16
	ElevWeightScaled []uint8
	Azimuth          []uint16
	AzTime           []float32
}

// RObsTableName is the single table declared by RObsBinaryTable.
const RObsTableName = "RObs"

// NewRObsBinaryTable returns an empty observation table with its column
// layout declared for numObs rows.
func NewRObsBinaryTable(numObs int) *RObsBinaryTable {
	t := &RObsBinaryTable{BinaryTable: *NewBinaryTable()}
	t.SetDataType("RObsBinaryTable")
	t.DeclareTable(TableInfo{
		Name: RObsTableName,
		Size: numObs,
		ColumnNames: []string{
			"x", "y", "z", "value", "scaledDist", "elevWeightScaled", "azimuth", "azTime",
		},
		ColumnUnits: []string{
			"dimensionless", "dimensionless", "dimensionless", "dBZ",
			"dimensionless", "dimensionless", "Degrees", "Seconds",
		},
		ColumnTypes: []ColumnType{
			ColUShort, ColUShort, ColUChar, ColFloat,
			ColUShort, ColUChar, ColUShort, ColFloat,
		},
	})
	return t
}

// PublishColumns registers the typed field slices as fetchable columns.
// Called by the reader after the field slices are filled.
func (t *RObsBinaryTable) PublishColumns() {
	t.SetUShortColumn("x", t.X)
	t.SetUShortColumn("y", t.Y)
	t.SetUCharColumn("z", t.Z)
	t.SetFloatColumn("value", t.Value)
	t.SetUShortColumn("scaledDist", t.ScaledDist)
	t.SetUCharColumn("elevWeightScaled", t.ElevWeightScaled)
	t.SetUShortColumn("azimuth", t.Azimuth)
	t.SetFloatColumn("azTime", t.AzTime)
}
