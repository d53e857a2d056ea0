package grid

import "log"

// AttrType tags the stored scalar type of an Attribute. The four types
// mirror what the NetCDF convention round trips.
type AttrType int

const (
	AttrString AttrType = iota
	AttrLong
	AttrFloat
	AttrDouble
)

// String returns the conventional type name used in text dumps.
func (t AttrType) String() string {
	switch t {
	case AttrString:
		return "string"
	case AttrLong:
		return "long"
	case AttrFloat:
		return "float"
	case AttrDouble:
		return "double"
	}
	return "unknown"
}

// Attribute is a named tagged value. Exactly one of the value fields is
// meaningful, selected by Type.
type Attribute struct {
	Name string
	Type AttrType

	s string
	i int64
	f float64
}

// StringValue returns the string payload; valid only when Type is
// AttrString.
func (a Attribute) StringValue() string { return a.s }

// LongValue returns the integer payload; valid only when Type is AttrLong.
func (a Attribute) LongValue() int64 { return a.i }

// FloatValue returns the float payload; valid when Type is AttrFloat or
// AttrDouble.
func (a Attribute) FloatValue() float64 { return a.f }

// AttributeList is an insertion-ordered container of uniquely named
// attributes. A later put with the same name replaces the prior value in
// place, keeping its original position.
type AttributeList struct {
	attrs []Attribute
	index map[string]int
}

// NewAttributeList returns an empty list.
func NewAttributeList() *AttributeList {
	return &AttributeList{index: make(map[string]int)}
}

// Len returns the number of attributes.
func (l *AttributeList) Len() int { return len(l.attrs) }

// Attrs returns the attributes in insertion order. The returned slice must
// not be modified.
func (l *AttributeList) Attrs() []Attribute { return l.attrs }

// Has reports whether name is present.
func (l *AttributeList) Has(name string) bool {
	_, ok := l.index[name]
	return ok
}

// Remove deletes the named attribute if present.
func (l *AttributeList) Remove(name string) {
	at, ok := l.index[name]
	if !ok {
		return
	}
	l.attrs = append(l.attrs[:at], l.attrs[at+1:]...)
	delete(l.index, name)
	for n, i := range l.index {
		if i > at {
			l.index[n] = i - 1
		}
	}
}

func (l *AttributeList) put(a Attribute) {
	if at, ok := l.index[a.Name]; ok {
		l.attrs[at] = a
		return
	}
	l.index[a.Name] = len(l.attrs)
	l.attrs = append(l.attrs, a)
}

// PutString inserts or replaces a string attribute.
func (l *AttributeList) PutString(name, v string) {
	l.put(Attribute{Name: name, Type: AttrString, s: v})
}

// PutLong inserts or replaces an integer attribute.
func (l *AttributeList) PutLong(name string, v int64) {
	l.put(Attribute{Name: name, Type: AttrLong, i: v})
}

// PutFloat inserts or replaces a single-precision attribute.
func (l *AttributeList) PutFloat(name string, v float32) {
	l.put(Attribute{Name: name, Type: AttrFloat, f: float64(v)})
}

// PutDouble inserts or replaces a double-precision attribute.
func (l *AttributeList) PutDouble(name string, v float64) {
	l.put(Attribute{Name: name, Type: AttrDouble, f: v})
}

// GetString returns the named string attribute. A typed get against a
// mismatched tag fails.
func (l *AttributeList) GetString(name string) (string, bool) {
	at, ok := l.index[name]
	if !ok || l.attrs[at].Type != AttrString {
		return "", false
	}
	return l.attrs[at].s, true
}

// GetLong returns the named integer attribute.
func (l *AttributeList) GetLong(name string) (int64, bool) {
	at, ok := l.index[name]
	if !ok || l.attrs[at].Type != AttrLong {
		return 0, false
	}
	return l.attrs[at].i, true
}

// GetFloat returns the named single-precision attribute. A double stored
// under the name is narrowed with a logged warning; this is the one
// tolerated widening pair.
func (l *AttributeList) GetFloat(name string) (float32, bool) {
	at, ok := l.index[name]
	if !ok {
		return 0, false
	}
	switch l.attrs[at].Type {
	case AttrFloat:
		return float32(l.attrs[at].f), true
	case AttrDouble:
		log.Printf("grid: attribute %q read as float but stored as double, casting", name)
		return float32(l.attrs[at].f), true
	}
	return 0, false
}

// GetDouble returns the named double-precision attribute. A float stored
// under the name is widened with a logged warning.
func (l *AttributeList) GetDouble(name string) (float64, bool) {
	at, ok := l.index[name]
	if !ok {
		return 0, false
	}
	switch l.attrs[at].Type {
	case AttrDouble:
		return l.attrs[at].f, true
	case AttrFloat:
		log.Printf("grid: attribute %q read as double but stored as float, casting", name)
		return l.attrs[at].f, true
	}
	return 0, false
}

// Clone returns a deep copy of the list.
func (l *AttributeList) Clone() *AttributeList {
	c := NewAttributeList()
	for _, a := range l.attrs {
		c.put(a)
	}
	return c
}

// Equal reports whether both lists hold the same attributes in the same
// order.
func (l *AttributeList) Equal(o *AttributeList) bool {
	if l.Len() != o.Len() {
		return false
	}
	for i, a := range l.attrs {
		if o.attrs[i] != a {
			return false
		}
	}
	return true
}
