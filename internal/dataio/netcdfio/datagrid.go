package netcdfio

import (
	"github.com/ctessum/cdf"

	"github.com/banshee-data/rapio/internal/grid"
)

// DataGridSpecializer is the generic reader/writer: it round trips any
// grid without interpreting geospatial semantics, and serves as the
// fallback for unknown datatype tags.
type DataGridSpecializer struct{}

// Read fills a plain DataGrid from the file.
func (s *DataGridSpecializer) Read(f *cdf.File, keys map[string]string) (grid.DataType, error) {
	g := grid.NewDataGrid()
	if err := readGrid(f, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Write encodes any DataGrid-backed type generically.
func (s *DataGridSpecializer) Write(dt grid.DataType, w *writeSession, keys map[string]string) error {
	g, err := backingGrid(dt)
	if err != nil {
		return err
	}
	g.UpdateGlobalAttributes(dt.DataType())
	if err := declareGrid(w, g); err != nil {
		return err
	}
	return w.commit(g.GlobalAttributes())
}

func backingGrid(dt grid.DataType) (*grid.DataGrid, error) {
	if gb, ok := dt.(grid.GridBacked); ok {
		return gb.Grid(), nil
	}
	return nil, errNotAGrid(dt)
}

type notAGridError struct{ tag string }

func (e notAGridError) Error() string {
	return "netcdf: datatype " + e.tag + " is not grid backed"
}

func errNotAGrid(dt grid.DataType) error {
	return notAGridError{tag: dt.DataType()}
}
