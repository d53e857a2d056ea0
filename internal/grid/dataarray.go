package grid

// DataArray wraps one named, typed Array together with its attribute list
// and the indexes of the owning grid's dimensions it spans. The Array is
// exclusively owned by its DataArray.
type DataArray struct {
	name       string
	units      string
	etype      ElementType
	dimIndexes []int
	arr        *Array
	attrs      *AttributeList
}

func newDataArray(name, units string, etype ElementType, dimIndexes []int, arr *Array) *DataArray {
	d := &DataArray{
		name:       name,
		units:      units,
		etype:      etype,
		dimIndexes: append([]int(nil), dimIndexes...),
		arr:        arr,
		attrs:      NewAttributeList(),
	}
	d.attrs.PutString(UnitsAttr, units)
	return d
}

// Name returns the array name.
func (d *DataArray) Name() string { return d.name }

// Units returns the units string. It is mirrored in the Units attribute.
func (d *DataArray) Units() string { return d.units }

// SetUnits updates the units string and its attribute mirror.
func (d *DataArray) SetUnits(units string) {
	d.units = units
	d.attrs.PutString(UnitsAttr, units)
}

// ElementType returns the scalar storage tag.
func (d *DataArray) ElementType() ElementType { return d.etype }

// DimIndexes returns the indexes into the owning grid's dimension table,
// one per array rank. The returned slice must not be modified.
func (d *DataArray) DimIndexes() []int { return d.dimIndexes }

// Array returns the owned Array.
func (d *DataArray) Array() *Array { return d.arr }

// Attributes returns the attribute list.
func (d *DataArray) Attributes() *AttributeList { return d.attrs }

// Hidden reports whether the array carries the writer-skip marker.
func (d *DataArray) Hidden() bool { return d.attrs.Has(HiddenAttr) }

// SetHidden adds or removes the writer-skip marker.
func (d *DataArray) SetHidden(hidden bool) {
	if hidden {
		d.attrs.PutString(HiddenAttr, "true")
	} else {
		d.attrs.Remove(HiddenAttr)
	}
}
