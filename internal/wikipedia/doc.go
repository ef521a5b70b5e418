// Package wikipedia looks up a short encyclopedia summary for a book.
//
// Lookup issues one MediaWiki action API request that searches for the term,
// keeps the single best match and asks for its intro extract, canonical URL,
// thumbnail, categories and cross-language links in the same round trip.
// A response without a real page (no query block, the "-1" sentinel id or a
// page flagged missing) returns ErrNoPage.
package wikipedia
