package grid

// Keys passed between the dispatcher, the format specializers and the
// DataType lifecycle hooks. The dispatcher fills the filename key and the
// format builders fill their URL keys; callers may add options.
const (
	KeyFilename     = "filename"
	KeyNetcdfURL    = "NETCDF_URL"
	KeyHDF5URL      = "HDF5_URL"
	KeyNcFlags      = "ncflags"
	KeyDeflateLevel = "deflate_level"
	KeyMakeSparse   = "MakeSparse"
	KeyConsole      = "console"
	KeyFilePathMode = "filepathmode"
)
