// Package catalogs holds what the individual catalog clients (cdms, heasarc) share.
package catalogs

import "errors"

// ErrNoData is returned when a catalog answered but the answer holds no
// table to parse: the service reported zero results or the response was not
// in the expected shape.
var ErrNoData = errors.New("catalog returned no data")

// ErrInvalidQuery is returned when a query is rejected before it is sent,
// for example an unknown species name or an unknown column filter.
var ErrInvalidQuery = errors.New("invalid catalog query")
