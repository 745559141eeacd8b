// Package extract turns one result page of the antenna registry into
// records.
//
// Every assumption about the site's markup lives here: which table holds
// the results, which column carries which field, what an explicit "no
// results" page looks like and how the pagination list advertises a
// following page. A layout change on the site should only ever require
// changing the Layout defaults in this package.
//
// Pages are parsed with golang.org/x/net/html and queried with goquery.
package extract
