package dataio

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression codecs recognised by suffix.
const (
	CodecGzip  = "gz"
	CodecBzip2 = "bz2"
	CodecXz    = "xz"
	CodecZstd  = "zst"
)

// GzipLevel tunes gzip effort for write post-processing; the other
// codecs run at their library defaults. The NetCDF builder sets it from
// the deflate_level key before each encode.
var GzipLevel = gzip.DefaultCompression

// SplitCompression peels a compression suffix off a path, returning the
// inner path and the codec ("" when uncompressed).
func SplitCompression(path string) (inner, codec string) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gz":
		return path[:len(path)-len(ext)], CodecGzip
	case ".bz2":
		return path[:len(path)-len(ext)], CodecBzip2
	case ".xz":
		return path[:len(path)-len(ext)], CodecXz
	case ".zst":
		return path[:len(path)-len(ext)], CodecZstd
	}
	return path, ""
}

// Decompress runs the named codec over a whole buffer.
func Decompress(codec string, data []byte) ([]byte, error) {
	switch codec {
	case "":
		return data, nil
	case CodecGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("dataio: gzip open: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case CodecBzip2:
		br, err := bzip2.NewReader(bytes.NewReader(data), nil)
		if err != nil {
			return nil, fmt.Errorf("dataio: bzip2 open: %w", err)
		}
		defer br.Close()
		return io.ReadAll(br)
	case CodecXz:
		xr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("dataio: xz open: %w", err)
		}
		return io.ReadAll(xr)
	case CodecZstd:
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("dataio: zstd open: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	}
	return nil, fmt.Errorf("dataio: unknown compression codec %q", codec)
}

// Compress runs the named codec over a whole buffer.
func Compress(codec string, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	switch codec {
	case "":
		return data, nil
	case CodecGzip:
		zw, err := gzip.NewWriterLevel(&buf, GzipLevel)
		if err != nil {
			return nil, fmt.Errorf("dataio: gzip level: %w", err)
		}
		if _, err := zw.Write(data); err != nil {
			return nil, fmt.Errorf("dataio: gzip write: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("dataio: gzip close: %w", err)
		}
	case CodecBzip2:
		bw, err := bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
		if err != nil {
			return nil, fmt.Errorf("dataio: bzip2 open: %w", err)
		}
		if _, err := bw.Write(data); err != nil {
			return nil, fmt.Errorf("dataio: bzip2 write: %w", err)
		}
		if err := bw.Close(); err != nil {
			return nil, fmt.Errorf("dataio: bzip2 close: %w", err)
		}
	case CodecXz:
		xw, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("dataio: xz open: %w", err)
		}
		if _, err := xw.Write(data); err != nil {
			return nil, fmt.Errorf("dataio: xz write: %w", err)
		}
		if err := xw.Close(); err != nil {
			return nil, fmt.Errorf("dataio: xz close: %w", err)
		}
	case CodecZstd:
		zw, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("dataio: zstd open: %w", err)
		}
		if _, err := zw.Write(data); err != nil {
			return nil, fmt.Errorf("dataio: zstd write: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("dataio: zstd close: %w", err)
		}
	default:
		return nil, fmt.Errorf("dataio: unknown compression codec %q", codec)
	}
	return buf.Bytes(), nil
}
