package odimio

import "sync"

// ProductInfo remaps an ODIM quantity name to the MRMS product name,
// units and colormap.
type ProductInfo struct {
	ProdName string
	DataType string
	Unit     string
	ColorMap string
}

var (
	productOnce  sync.Once
	productInfos map[string]ProductInfo
)

// loadProductInfos builds the quantity table on first use; read-only
// afterwards. The entries follow the ODIM_H5 quantity vocabulary for the
// moments the downstream mosaic consumes.
func loadProductInfos() {
	productInfos = map[string]ProductInfo{
		"DBZH":  {"DBZH", "Reflectivity", "dBZ", "Reflectivity"},
		"DBZV":  {"DBZV", "ReflectivityVertical", "dBZ", "Reflectivity"},
		"TH":    {"TH", "TotalReflectivity", "dBZ", "Reflectivity"},
		"VRADH": {"VRADH", "Velocity", "MetersPerSecond", "Velocity"},
		"VRAD":  {"VRAD", "Velocity", "MetersPerSecond", "Velocity"},
		"WRADH": {"WRADH", "SpectrumWidth", "MetersPerSecond", "SpectrumWidth"},
		"ZDR":   {"ZDR", "Zdr", "dB", "Zdr"},
		"RHOHV": {"RHOHV", "RhoHV", "dimensionless", "RhoHV"},
		"PHIDP": {"PHIDP", "PhiDP", "Degrees", "PhiDP"},
		"KDP":   {"KDP", "Kdp", "Degrees", "Kdp"},
		"SQIH":  {"SQIH", "SQI", "dimensionless", "SQI"},
	}
}

// GetProductInfo returns the mapping for an ODIM quantity. Unknown
// quantities keep their own name with dBZ units, matching the legacy
// default.
func GetProductInfo(name string) ProductInfo {
	productOnce.Do(loadProductInfos)
	if info, ok := productInfos[name]; ok {
		return info
	}
	return ProductInfo{ProdName: name, DataType: name, Unit: "dBZ", ColorMap: "dBZ"}
}
