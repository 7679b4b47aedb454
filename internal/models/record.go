package models

// Field is one named value of a TreeRecord. A nil Value is a null field
// (an element with no text content).
type Field struct {
	Value *string
	Name  string
}

// TreeRecord is one row fragment of an RDF document with namespace-stripped
// field names, in document order.
type TreeRecord struct {
	Fields []Field
}

// Set stores a field value. A repeated name overwrites the earlier value but
// keeps its original position.
func (r *TreeRecord) Set(name string, value *string) {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			r.Fields[i].Value = value

			return
		}
	}

	r.Fields = append(r.Fields, Field{Name: name, Value: value})
}

// Get returns the value of a field and whether the field is present.
// A present field may still carry a nil (null) value.
func (r *TreeRecord) Get(name string) (*string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}

	return nil, false
}

// Text returns the non-null value of a field, or "" and false.
func (r *TreeRecord) Text(name string) (string, bool) {
	v, ok := r.Get(name)
	if !ok || v == nil {
		return "", false
	}

	return *v, true
}

// RouteRecord is one data row of the route ridership CSV, addressed by
// header name. Line is the 1-based line number in the source file.
type RouteRecord struct {
	Values map[string]string
	Line   int
}
