package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/keraies/antennascan/internal/model"
)

// DefaultDebugPages is the number of leading pages dumped for diagnosis.
const DefaultDebugPages = 2

// PageSource returns the raw markup of one result page.
type PageSource interface {
	FetchPage(ctx context.Context, searchCode string, page int) (*model.RawPage, error)
}

// PageExtractor converts raw markup into records.
type PageExtractor interface {
	Extract(raw []byte, municipality string, page int) (*model.PageResult, error)
}

// Dumper stores diagnostic artifacts. *fetch.FilesystemDump implements it.
type Dumper interface {
	Write(name string, contents []byte) string
}

// PageError is returned when a page could not be fetched or understood.
type PageError struct {
	// Page is the 1-based page number that failed.
	Page int

	// Err is the fetch or extraction error.
	Err error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// Paginator runs the page loop for one query.
type Paginator struct {
	source    PageSource
	extractor PageExtractor

	// maxPages caps the number of pages fetched. 0 means no cap.
	maxPages int

	dumper    Dumper
	dumpPages int

	logger *slog.Logger
}

// PaginatorOption configures a Paginator.
type PaginatorOption func(*Paginator)

// WithMaxPages caps the number of pages fetched. 0 means no cap.
func WithMaxPages(n int) PaginatorOption {
	return func(p *Paginator) {
		p.maxPages = n
	}
}

// WithDumper stores the raw markup of the first n pages through d.
func WithDumper(d Dumper, n int) PaginatorOption {
	return func(p *Paginator) {
		p.dumper = d
		p.dumpPages = n
	}
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l *slog.Logger) PaginatorOption {
	return func(p *Paginator) {
		p.logger = l
	}
}

// NewPaginator creates a Paginator.
func NewPaginator(source PageSource, extractor PageExtractor, opts ...PaginatorOption) *Paginator {
	p := &Paginator{
		source:    source,
		extractor: extractor,
		dumpPages: DefaultDebugPages,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DebugFileName is the name under which page n is dumped.
func DebugFileName(page int) string {
	return fmt.Sprintf("debug_response_page_%d.html", page)
}

// Run fetches result pages for searchCode until the run is done or fails.
// municipality is the display name copied into every record. A positive
// maxPages overrides the cap set with WithMaxPages.
//
// The returned result is never nil. On failure it holds everything gathered
// before the failing page and the error is a *PageError.
func (p *Paginator) Run(ctx context.Context, searchCode, municipality string, maxPages int) (*model.RunResult, error) {
	limit := p.maxPages
	if maxPages > 0 {
		limit = maxPages
	}

	result := &model.RunResult{Records: []model.AntennaRecord{}}
	previous := ""

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return result, &PageError{Page: page, Err: err}
		}

		p.logger.Info("fetching page", "municipality", municipality, "page", page)

		raw, err := p.source.FetchPage(ctx, searchCode, page)
		if err != nil {
			return result, &PageError{Page: page, Err: err}
		}
		result.Summary.PagesFetched++

		if p.dumper != nil && page <= p.dumpPages {
			p.dumper.Write(DebugFileName(page), raw.Body)
		}

		pr, err := p.extractor.Extract(raw.Body, municipality, page)
		if err != nil {
			return result, &PageError{Page: page, Err: err}
		}
		result.Summary.RowsSkipped += pr.RowsSkipped

		if pr.RowsSkipped > 0 {
			p.logger.Warn("skipped malformed rows", "page", page, "skipped", pr.RowsSkipped)
		}

		if len(pr.Records) == 0 {
			if page == 1 {
				p.logger.Warn("first page returned no records", "municipality", municipality)
			} else {
				p.logger.Info("page returned no records", "page", page)
			}
			break
		}

		fp := fingerprint(pr.Records)
		if fp == previous {
			result.Summary.PagesRepeated++
			p.logger.Warn("page repeats the previous page, stopping", "page", page)
			break
		}
		previous = fp

		for _, r := range pr.Records {
			r.Sequence = len(result.Records) + 1
			result.Records = append(result.Records, r)
		}
		result.Summary.RecordsFound = len(result.Records)

		p.logger.Info("page extracted",
			"page", page,
			"records", len(pr.Records),
			"total", result.Summary.RecordsFound,
		)

		if !pr.HasMore {
			break
		}
		if limit > 0 && page >= limit {
			p.logger.Info("page limit reached", "max_pages", limit)
			break
		}
	}

	return result, nil
}

// fingerprint identifies a page's records for repeat detection.
func fingerprint(records []model.AntennaRecord) string {
	var sb strings.Builder
	for _, r := range records {
		sb.WriteString(r.PositionCode)
		sb.WriteByte(0x1f)
		sb.WriteString(r.Company)
		sb.WriteByte(0x1f)
		sb.WriteString(r.Address)
		sb.WriteByte(0x1e)
	}
	return sb.String()
}
