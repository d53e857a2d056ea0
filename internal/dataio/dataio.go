package dataio

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/banshee-data/rapio/internal/grid"
)

// Builder reads and writes one file family. CreateDataType is handed the
// path of an already-decompressed local file; it opens its own native
// handle, inspects the datatype discriminator, and dispatches to the
// matching specializer. EncodeDataType writes to exactly the given
// filename; compression and rename-into-place are the dispatcher's job.
type Builder interface {
	CreateDataType(filename string, keys map[string]string) (grid.DataType, error)
	EncodeDataType(dt grid.DataType, filename string, keys map[string]string) error
}

var (
	registryMu sync.Mutex
	builders   = map[string]Builder{}
	sealed     bool
)

// RegisterBuilder adds a format builder under its key, such as "netcdf".
// Registration happens during package init; calling after the first read
// or write, or re-registering a key, is a programming error.
func RegisterBuilder(key string, b Builder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if sealed {
		panic(fmt.Sprintf("dataio: RegisterBuilder(%q) after initialization", key))
	}
	if _, dup := builders[key]; dup {
		panic(fmt.Sprintf("dataio: RegisterBuilder(%q) called twice", key))
	}
	builders[key] = b
}

func builderFor(key string) (Builder, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	sealed = true
	b, ok := builders[key]
	return b, ok
}

// Formats returns the registered builder keys, sealing the registry.
func Formats() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	sealed = true
	keys := make([]string, 0, len(builders))
	for k := range builders {
		keys = append(keys, k)
	}
	return keys
}

// suffixFormats maps data suffixes to builder keys.
var suffixFormats = map[string]string{
	".nc":     "netcdf",
	".netcdf": "netcdf",
	".h5":     "hdf5",
	".hdf5":   "hdf5",
	".grib2":  "grib2",
	".grb2":   "grib2",
	".raw":    "raw",
	".txt":    "text",
	".text":   "text",
}

// ResolveFormat determines the builder key and compression codec for a
// path. The compression suffix is peeled first, so "x.nc.gz" resolves to
// ("netcdf", "gz").
func ResolveFormat(path string) (format, codec string) {
	inner, codec := SplitCompression(path)
	format = suffixFormats[strings.ToLower(filepath.Ext(inner))]
	return format, codec
}

// Read ingests the file at path, routing by suffix or by an explicit
// "format" key. On success the returned DataType has had PostRead applied,
// so sparse primaries are dense. Failures are logged once and returned.
func Read(path string, keys map[string]string) (grid.DataType, error) {
	if keys == nil {
		keys = map[string]string{}
	}
	format, codec := ResolveFormat(path)
	if f := keys["format"]; f != "" {
		format = f
	}
	if format == "" {
		err := fmt.Errorf("dataio: no reader for %q", path)
		log.Printf("%v", err)
		return nil, err
	}
	b, ok := builderFor(format)
	if !ok {
		err := fmt.Errorf("dataio: format %q is not registered", format)
		log.Printf("%v", err)
		return nil, err
	}

	filename := path
	if codec != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("dataio: unable to pull data from %s: %v", path, err)
			return nil, err
		}
		data, err = Decompress(codec, data)
		if err != nil {
			log.Printf("dataio: decompress %s: %v", path, err)
			return nil, err
		}
		tmp, err := os.CreateTemp("", "rapio-*"+filepath.Ext(strings.TrimSuffix(path, "."+codec)))
		if err != nil {
			return nil, err
		}
		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return nil, err
		}
		tmp.Close()
		defer os.Remove(tmp.Name())
		filename = tmp.Name()
	}

	keys[grid.KeyFilename] = path
	dt, err := b.CreateDataType(filename, keys)
	if err != nil || dt == nil {
		log.Printf("dataio: %s reader failed for %s: %v", format, path, err)
		return nil, err
	}
	dt.SetReadFactory(format)
	dt.PostRead(keys)
	return dt, nil
}

// Write encodes dt to path, routing by suffix, by an explicit "format"
// key, or by the factory that read the data. The encode happens into a
// scratch file which is post-processed (compression by suffix) and
// renamed into place; with filepathmode=direct the builder writes to
// exactly path and no rename happens.
func Write(dt grid.DataType, path string, keys map[string]string) error {
	if keys == nil {
		keys = map[string]string{}
	}
	format, codec := ResolveFormat(path)
	if f := keys["format"]; f != "" {
		format = f
	}
	if format == "" {
		format = dt.ReadFactory()
	}
	if format == "" {
		format = "netcdf"
	}
	b, ok := builderFor(format)
	if !ok {
		err := fmt.Errorf("dataio: format %q is not registered", format)
		log.Printf("%v", err)
		return err
	}
	keys[grid.KeyFilename] = path

	if keys[grid.KeyFilePathMode] == "direct" {
		if err := b.EncodeDataType(dt, path, keys); err != nil {
			log.Printf("dataio: %s writer failed for %s: %v", format, path, err)
			return err
		}
		return nil
	}

	dir := filepath.Dir(path)
	scratch := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	defer os.Remove(scratch)

	if err := b.EncodeDataType(dt, scratch, keys); err != nil {
		log.Printf("dataio: %s writer failed for %s: %v", format, path, err)
		return err
	}

	if codec != "" {
		data, err := os.ReadFile(scratch)
		if err != nil {
			return err
		}
		data, err = Compress(codec, data)
		if err != nil {
			log.Printf("dataio: compress %s: %v", path, err)
			return err
		}
		if err := os.WriteFile(scratch, data, 0o644); err != nil {
			return err
		}
	}
	if err := os.Rename(scratch, path); err != nil {
		log.Printf("dataio: rename into place for %s: %v", path, err)
		return err
	}
	return nil
}

// SpecializerSet is the per-builder registry mapping datatype tags to
// specializers. The generic fallback is registered under "DataGrid".
type SpecializerSet[T any] struct {
	mu    sync.Mutex
	items map[string]T
}

// NewSpecializerSet returns an empty set.
func NewSpecializerSet[T any]() *SpecializerSet[T] {
	return &SpecializerSet[T]{items: map[string]T{}}
}

// Introduce registers a specializer under a datatype tag, replacing any
// prior registration. Idempotent within an initialization phase.
func (s *SpecializerSet[T]) Introduce(tag string, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[tag] = item
}

// Find returns the specializer for a tag.
func (s *SpecializerSet[T]) Find(tag string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[tag]
	return item, ok
}

// FindOrFallback returns the specializer for tag, falling back to the
// generic entry with a logged notice.
func (s *SpecializerSet[T]) FindOrFallback(tag, fallback string) (T, bool) {
	if item, ok := s.Find(tag); ok {
		return item, true
	}
	log.Printf("dataio: no specializer for datatype %q, using %q", tag, fallback)
	return s.Find(fallback)
}
