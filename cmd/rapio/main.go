// Command rapio inspects and converts gridded radar data files between
// the supported formats: NetCDF, HDF5 ODIM, GRIB2, MRMS raw and text
// dumps.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/banshee-data/rapio/internal/config"
	"github.com/banshee-data/rapio/internal/dataio"
	"github.com/banshee-data/rapio/internal/dataio/gribio"
	_ "github.com/banshee-data/rapio/internal/dataio/netcdfio"
	_ "github.com/banshee-data/rapio/internal/dataio/odimio"
	_ "github.com/banshee-data/rapio/internal/dataio/rawio"
	"github.com/banshee-data/rapio/internal/dataio/textio"
	"github.com/banshee-data/rapio/internal/grid"
	"github.com/banshee-data/rapio/internal/units"
	"github.com/banshee-data/rapio/internal/version"
)

// convertPrimaryUnits rescales the primary array in place to the target
// units, skipping sentinel cells.
func convertPrimaryUnits(dt grid.DataType, target string) error {
	gb, ok := dt.(grid.GridBacked)
	if !ok {
		return fmt.Errorf("convert: datatype %s has no primary array", dt.DataType())
	}
	primary := gb.Grid().Primary()
	if primary == nil {
		return fmt.Errorf("convert: no primary array to convert")
	}
	conv, ok := units.GetConverter(primary.Units(), target)
	if !ok {
		return fmt.Errorf("convert: cannot convert %q to %q", primary.Units(), target)
	}
	arr := primary.Array()
	for i := 0; i < arr.Len(); i++ {
		v := arr.FlatValue(i)
		if grid.IsGood(v) {
			arr.SetFlatValue(conv.Value(v), i)
		}
	}
	primary.SetUnits(target)
	return nil
}

func buildKeys(cCtx *cli.Context) (map[string]string, error) {
	keys := map[string]string{}
	if cCtx.IsSet("deflate") {
		keys[grid.KeyDeflateLevel] = strconv.Itoa(cCtx.Int("deflate"))
	}
	if cCtx.IsSet("sparse") {
		if cCtx.Bool("sparse") {
			keys[grid.KeyMakeSparse] = "on"
		} else {
			keys[grid.KeyMakeSparse] = "off"
		}
	}
	if cCtx.Bool("direct") {
		keys[grid.KeyFilePathMode] = "direct"
	}
	if path := cCtx.String("config"); path != "" {
		c, err := config.LoadFormatConfig(path)
		if err != nil {
			return nil, err
		}
		c.ApplyToKeys(keys)
	}
	return keys, nil
}

func dump(cCtx *cli.Context) error {
	in := cCtx.Args().First()
	if in == "" {
		return fmt.Errorf("dump: input file required")
	}
	dt, err := dataio.Read(in, nil)
	if err != nil {
		return err
	}
	if c, ok := dt.(*gribio.Catalog); ok {
		c.PrintCatalog(os.Stdout)
		return nil
	}
	if m, ok := dt.(*grid.MultiDataType); ok {
		for _, sub := range m.Types() {
			if err := textio.Dump(sub, os.Stdout); err != nil {
				return err
			}
		}
		return nil
	}
	return textio.Dump(dt, os.Stdout)
}

func copyFile(cCtx *cli.Context) error {
	in, out := cCtx.Args().Get(0), cCtx.Args().Get(1)
	if in == "" || out == "" {
		return fmt.Errorf("copy: input and output files required")
	}
	keys, err := buildKeys(cCtx)
	if err != nil {
		return err
	}
	dt, err := dataio.Read(in, nil)
	if err != nil {
		return err
	}
	if m, ok := dt.(*grid.MultiDataType); ok {
		log.Printf("input bundles %d datatypes, writing the first", m.Len())
		dt = m.Types()[0]
	}
	if target := cCtx.String("units"); target != "" {
		if err := convertPrimaryUnits(dt, target); err != nil {
			return err
		}
	}
	return dataio.Write(dt, out, keys)
}

func catalog(cCtx *cli.Context) error {
	in := cCtx.Args().First()
	if in == "" {
		return fmt.Errorf("catalog: input file required")
	}
	dt, err := dataio.Read(in, map[string]string{"format": gribio.FormatKey})
	if err != nil {
		return err
	}
	c, ok := dt.(*gribio.Catalog)
	if !ok {
		return fmt.Errorf("catalog: %s is not a GRIB2 file", in)
	}
	c.PrintCatalog(os.Stdout)
	return nil
}

func fetch(cCtx *cli.Context) error {
	in, out := cCtx.Args().Get(0), cCtx.Args().Get(1)
	if in == "" || out == "" {
		return fmt.Errorf("fetch: input and output files required")
	}
	keys, err := buildKeys(cCtx)
	if err != nil {
		return err
	}
	dt, err := dataio.Read(in, map[string]string{"format": gribio.FormatKey})
	if err != nil {
		return err
	}
	c, ok := dt.(*gribio.Catalog)
	if !ok {
		return fmt.Errorf("fetch: %s is not a GRIB2 file", in)
	}
	llg, err := c.FetchLatLonGrid(
		cCtx.String("product"), cCtx.String("level"),
		cCtx.Float64("nwlat"), cCtx.Float64("nwlon"),
		cCtx.Float64("spacing"), cCtx.Float64("spacing"),
		cCtx.Int("numlat"), cCtx.Int("numlon"))
	if err != nil {
		return err
	}
	return dataio.Write(llg, out, keys)
}

func main() {
	sharedFlags := []cli.Flag{
		&cli.IntFlag{
			Name:  "deflate",
			Usage: "Output compression level, 0-9.",
			Value: 6,
		},
		&cli.BoolFlag{
			Name:  "sparse",
			Usage: "Write the primary field with the sparse pixel encoding.",
		},
		&cli.BoolFlag{
			Name:  "direct",
			Usage: "Write to exactly the named file, bypassing scratch paths.",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to a JSON format-settings file.",
		},
	}

	app := &cli.App{
		Name:    "rapio",
		Usage:   "inspect and convert gridded radar data files",
		Version: version.Version,
		Commands: []*cli.Command{
			{
				Name:      "dump",
				Usage:     "Read any supported file and print a text rendition.",
				ArgsUsage: "<input>",
				Action:    dump,
			},
			{
				Name:      "copy",
				Usage:     "Read a file and write it in the format the output suffix selects.",
				ArgsUsage: "<input> <output>",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "units",
						Usage: "Convert the primary field to these units before writing.",
					},
				}, sharedFlags...),
				Action: copyFile,
			},
			{
				Name:      "catalog",
				Usage:     "List the fields of a GRIB2 file.",
				ArgsUsage: "<input.grib2>",
				Action:    catalog,
			},
			{
				Name:      "fetch",
				Usage:     "Fetch one GRIB2 field onto a lat/lon coverage and write it.",
				ArgsUsage: "<input.grib2> <output>",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "product", Usage: "Product name to match.", Required: true},
					&cli.StringFlag{Name: "level", Usage: "Level string to match."},
					&cli.Float64Flag{Name: "nwlat", Usage: "North-west corner latitude.", Value: 55},
					&cli.Float64Flag{Name: "nwlon", Usage: "North-west corner longitude.", Value: -130},
					&cli.Float64Flag{Name: "spacing", Usage: "Cell spacing in degrees.", Value: 0.05},
					&cli.IntFlag{Name: "numlat", Usage: "Latitude cell count.", Value: 1000},
					&cli.IntFlag{Name: "numlon", Usage: "Longitude cell count.", Value: 2000},
				}, sharedFlags...),
				Action: fetch,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
