package model

// RawPage is one HTTP response body, already transcoded to UTF-8.
type RawPage struct {
	// URL is the final request URL.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the Content-Type header of the response.
	ContentType string `json:"content_type"`

	// Body is the response body in UTF-8.
	Body []byte `json:"-"`
}

// PageResult is what the extractor recovered from one result page.
// It is owned by the paginator for a single iteration.
type PageResult struct {
	// Records holds the page's records in table order. Sequence is left zero.
	Records []AntennaRecord

	// HasMore reports whether the page advertises a following page.
	HasMore bool

	// Parsed reports whether the results structure was recognised.
	// An explicit "no results" page is parsed with zero records.
	Parsed bool

	// RowCount is the number of data rows seen, including skipped ones.
	RowCount int

	// RowsSkipped counts data rows that could not be split into columns.
	RowsSkipped int
}

// RunSummary holds the counters reported at the end of a run.
type RunSummary struct {
	PagesFetched int `json:"pages_fetched"`
	RecordsFound int `json:"records_found"`
	RowsSkipped  int `json:"rows_skipped"`

	// PagesRepeated counts fetched pages whose records repeated the
	// previous page. Their records are dropped and the run stops there.
	PagesRepeated int `json:"pages_repeated,omitempty"`
}

// RunResult is the paginator's output. Records is populated even when the
// run ended in failure.
type RunResult struct {
	Records []AntennaRecord
	Summary RunSummary
}
