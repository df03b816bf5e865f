package orchestration

import (
	"fmt"
	"strings"

	"github.com/agbru/billcheck/internal/billing"
	apperrors "github.com/agbru/billcheck/internal/errors"
)

// SelectFacilities picks the sweep targets from the loaded list. An empty id
// list selects every facility; otherwise facilities are returned in the order
// requested, duplicates dropped. Unknown ids are a ValidationError naming
// all of them.
func SelectFacilities(catalog billing.Catalog, ids []string) ([]billing.Facility, error) {
	if len(ids) == 0 {
		return catalog.Facilities(), nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]billing.Facility, 0, len(ids))
	var unknown []string
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		f, ok := catalog.Lookup(id)
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		out = append(out, f)
	}
	if len(unknown) > 0 {
		return nil, apperrors.ValidationError{
			Field:   "hospitals",
			Message: fmt.Sprintf("unknown hospital id(s): %s", strings.Join(unknown, ", ")),
		}
	}
	return out, nil
}
