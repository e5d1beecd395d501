/*
Package catalog turns the declarative tool catalog into registry entries.

The catalog (catalog.yaml, embedded) lists the upstream resources and the tool
families each supports. Every (resource, family) pair expands into one Tool: a
kebab-case name, a description, an input schema composed from the schema package
and the upstream operation it maps to, including the fixed table that renames
argument fields to upstream query keys.

# Families

  - list:      get-R                  GET {base}/{Path}?sortBy&sortDirection
  - by-id:     get-R-by-id            GET {base}/{Path}/{id}
  - by-name:   get-R-by-name          GET {base}/{Path}/name/{name}
  - search:    search-R-by-keyword    GET {base}/{Path}/search/{keyword}
  - paginated: get-R-paginated        GET {base}/{Path}/pagedList?Page&PageSize&SortBy&SortDirection
  - relation:  get-R-by-id-<related>  GET {base}/{Path}/{id}/{related}?sortBy&sortDirection

A resource may override the query key table of a family with queryKeys.
*/
package catalog
