package extract

import "fmt"

// PageStructureError reports that the results structure could not be found
// on a page. It means the site layout changed; every following page would
// fail the same way.
type PageStructureError struct {
	// Page is the 1-based page number.
	Page int

	// Reason describes what was missing.
	Reason string
}

func (e *PageStructureError) Error() string {
	return fmt.Sprintf("page %d: results structure not found: %s", e.Page, e.Reason)
}
