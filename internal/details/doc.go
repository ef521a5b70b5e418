// Package details assembles the full record shown on a book's detail page.
//
// Assembler.Get runs three stages in strict order:
//
//  1. Fetch the work. This is the only stage whose failure is returned.
//  2. Fetch every referenced author concurrently and wait for all of them.
//     A failed author is logged and dropped. Survivors keep the work's
//     reference order, not completion order.
//  3. Look up an encyclopedia summary for "<title> <first author>" under a
//     separate timeout. Any error leaves Book.Encyclopedia nil. The lookup is
//     never retried.
//
// The merged Book takes its singular CoverID from the first entry of Covers.
package details
