// Package dataio routes reads and writes of gridded data files to
// per-format builders. A builder owns the native container (NetCDF file,
// HDF5 file, GRIB2 stream) and dispatches on the file's datatype
// discriminator to a registered specializer.
//
// Format packages register themselves in init, driver style; the registry
// seals at the first read or write and later registration panics. The
// dispatcher resolves the format from the filename suffix (after peeling
// any compression suffix), runs the decompression filter chain, and calls
// PostRead after every successful read. PreWrite/PostWrite are left to the
// builders; the NetCDF builder brackets each encode with them.
package dataio
