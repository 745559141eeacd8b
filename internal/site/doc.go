// Package site knows how keraies.eett.gr is driven: the search form at
// anazhthsh.php and the result pages served by getData.php.
//
// A search starts with a GET of the search form, whose hidden inputs are
// sent back with every result page request. Result pages are requested
// with a form POST carrying the municipality code, the page number and
// the action ("search" for the first page, "page" afterwards), with the
// search form as Referer.
package site
