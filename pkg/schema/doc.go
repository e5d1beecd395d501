// Package schema provides the field vocabulary used to describe and validate tool inputs.
//
// Every field is backed by a single kin-openapi schema object. A Schema is an ordered
// list of fields; the same list renders the JSON-Schema shown to clients during
// discovery (MarshalJSON) and performs the runtime check before any upstream call
// (Validate), so the two views cannot drift.
//
// Basic usage:
//
//	s := schema.IDSort()
//
//	args, err := s.Validate(map[string]any{"id": 3.0, "sortDirection": "asc"})
//	if err != nil {
//	    // err is an *AggregateError listing every violated field
//	}
//
// Compositions cover the shapes the catalog needs: None, IDOnly, SortOnly, IDSort,
// PageSort, YearOnly and StringOnly for name/keyword lookups.
package schema
