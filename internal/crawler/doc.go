// Package crawler drives the fetch and extract loop across result pages.
//
// # Lifecycle
//
// A run walks page numbers from 1:
//
//	START -> FETCHING(n) -> EXTRACTING(n) -> FETCHING(n+1) | DONE | FAILED
//
// The run is DONE when a page reports no following page, when the page cap
// is reached, when a page yields no records, or when a page repeats the
// previous one verbatim. A fetch error or a page whose structure cannot be
// recognised makes the run FAILED; the records gathered so far are still
// returned together with a *PageError naming the page.
//
// Sequence numbers are assigned here, continuing across pages. Records are
// never deduplicated.
//
// # Usage
//
//	p := crawler.NewPaginator(source, extractor, crawler.WithMaxPages(5))
//	result, err := p.Run(ctx, "9001", "Χαλκιδέων", 0)
package crawler
