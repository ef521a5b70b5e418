// Package openlibrary provides an HTTP client for the Open Library read API.
//
// # Overview
//
// The client covers the endpoints folio needs:
//
//   - /search.json: full-text search, projected to BookSummary values
//   - /subjects/{name}.json: subject browse, mapped to the same BookSummary shape
//   - /works/{id}.json: a single work record, validated into Work
//   - /authors/{id}.json: a single author record
//   - /recentchanges.json: the catalog edit feed, filtered to an allow-list
//
// Every call is a single attempt. There is no caching and no retry. Callers
// bound latency through the context and the client timeout.
//
// # Queries
//
// Search accepts a Query, which is either Text or Filters. Text is sent as the
// q parameter unchanged. Filters renders its fields in a fixed order:
//
//	Filters{Query: "dune", Language: "ENG", Year: 1965, Type: "Fiction"}
//	// q=dune language:eng first_publish_year:1965 subject:fiction
//
// HasCovers is never part of q. It is sent as has_cover=true.
//
// # Errors
//
// Non-2xx responses return *StatusError. A 404 additionally matches
// ErrNotFound. A search or subject response without usable documents returns
// ErrNoResults instead of an empty slice.
//
// # Schema
//
// Raw payloads are decoded into private record types and validated before
// they leave the package. Absent optional fields become nil pointers or nil
// slices, never zero values. Work descriptions may arrive as a string or a
// typed object and author references in either of the catalog's two shapes.
// A work without a title keeps its bare id as the title.
package openlibrary
