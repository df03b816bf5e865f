package billing

// Catalog is an immutable snapshot of the facility list produced by one search.
type Catalog struct {
	query      string
	facilities []Facility
	index      map[string]int
}

// NewCatalog builds a snapshot for the given query. The slice is copied.
func NewCatalog(query string, facilities []Facility) Catalog {
	fs := make([]Facility, len(facilities))
	copy(fs, facilities)
	idx := make(map[string]int, len(fs))
	for i, f := range fs {
		if _, dup := idx[f.ID]; !dup {
			idx[f.ID] = i
		}
	}
	return Catalog{query: query, facilities: fs, index: idx}
}

// Query returns the search text that produced the snapshot.
func (c Catalog) Query() string { return c.query }

// Len returns the number of facilities.
func (c Catalog) Len() int { return len(c.facilities) }

// At returns the i-th facility.
func (c Catalog) At(i int) Facility { return c.facilities[i] }

// Facilities returns a copy of the list.
func (c Catalog) Facilities() []Facility {
	out := make([]Facility, len(c.facilities))
	copy(out, c.facilities)
	return out
}

// Lookup finds a facility by id.
func (c Catalog) Lookup(id string) (Facility, bool) {
	i, ok := c.index[id]
	if !ok {
		return Facility{}, false
	}
	return c.facilities[i], true
}
