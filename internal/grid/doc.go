// Package grid implements the in-memory gridded-data model used across the
// MRMS-style processing pipeline: typed N-dimensional arrays, attribute
// lists, the DataGrid container, and its geospatial specialisations
// (RadialSet, LatLonGrid, LatLonHeightGrid, BinaryTable).
//
// A DataGrid is a dimension table plus an ordered collection of named,
// typed arrays sharing those dimensions. Exactly one array is the primary
// field (canonical name "primary"); on disk it is stored under the grid's
// TypeName and renamed back on read. The package also carries the sparse
// run-length codec used by the MRMS NetCDF convention and the projections
// that map geographic coordinates into array indices.
//
// Readers and writers live in internal/dataio and its format subpackages;
// they only touch this package through the exported surface.
package grid
