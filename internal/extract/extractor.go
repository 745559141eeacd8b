package extract

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/keraies/antennascan/internal/model"
)

// startPagePattern matches the onclick handler of a pagination link,
// e.g. "document.forms[0].startPage.value='3'; submit()".
var startPagePattern = regexp.MustCompile(`startPage\.value\s*=\s*'?(\d+)'?`)

// Extractor converts result pages into records.
type Extractor struct {
	layout Layout
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLayout replaces the default page layout.
func WithLayout(l Layout) Option {
	return func(e *Extractor) {
		e.layout = l
	}
}

// WithLogger sets the logger used to report skipped rows.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = l
	}
}

// WithCapacity overrides the number of rows a full page carries.
func WithCapacity(n int) Option {
	return func(e *Extractor) {
		e.layout.Capacity = n
	}
}

// New creates an Extractor using DefaultLayout unless overridden.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		layout: DefaultLayout(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Layout returns the layout in use.
func (e *Extractor) Layout() Layout {
	return e.layout
}

// Extract parses one result page. municipality is copied into every record;
// page is the 1-based page number used for pagination and error context.
//
// A page with an explicit "no results" marker, or with a results table that
// has no data rows, yields an empty result with HasMore false. A page with
// neither is a *PageStructureError.
func (e *Extractor) Extract(raw []byte, municipality string, page int) (*model.PageResult, error) {
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, &PageStructureError{Page: page, Reason: fmt.Sprintf("unparseable markup: %v", err)}
	}
	doc := goquery.NewDocumentFromNode(root)

	table, header, columns, ok := e.findTable(doc)
	if !ok {
		if e.isNoResults(doc) {
			return &model.PageResult{Parsed: true}, nil
		}
		return nil, &PageStructureError{Page: page, Reason: "no results table and no \"no results\" marker"}
	}

	result := &model.PageResult{Parsed: true}
	needed := cellsNeeded(columns)

	e.dataRows(table, header).Each(func(i int, row *goquery.Selection) {
		result.RowCount++

		cells := row.ChildrenFiltered("td")
		if cells.Length() < needed {
			result.RowsSkipped++
			e.logger.Debug("skipping malformed row",
				"page", page,
				"row", i+1,
				"cells", cells.Length(),
				"want", needed,
			)
			return
		}

		result.Records = append(result.Records, model.AntennaRecord{
			PositionCode: cellText(cells.Eq(columns[FieldPositionCode])),
			Category:     cellText(cells.Eq(columns[FieldCategory])),
			Company:      cellText(cells.Eq(columns[FieldCompany])),
			Address:      cellText(cells.Eq(columns[FieldAddress])),
			Municipality: municipality,
		})
	})

	if result.RowCount == 0 {
		return result, nil
	}

	full := e.layout.Capacity <= 0 || result.RowCount >= e.layout.Capacity
	result.HasMore = full && e.hasNext(doc, page)

	return result, nil
}

// findTable returns the first table whose header row is wide enough for the
// layout, together with that header row and the column positions to use.
func (e *Extractor) findTable(doc *goquery.Document) (*goquery.Selection, *goquery.Selection, map[Field]int, bool) {
	var (
		table   *goquery.Selection
		header  *goquery.Selection
		columns map[Field]int
	)

	doc.Find(e.layout.TableSelector).EachWithBreak(func(_ int, t *goquery.Selection) bool {
		h := headerRow(t)
		if h == nil {
			return true
		}

		cells := h.ChildrenFiltered("th, td")
		cols := e.columnsFor(cells)
		if cells.Length() < cellsNeeded(cols) {
			return true
		}

		table, header, columns = t, h, cols
		return false
	})

	return table, header, columns, table != nil
}

// columnsFor refines the layout's default positions with recognised labels.
func (e *Extractor) columnsFor(headerCells *goquery.Selection) map[Field]int {
	cols := make(map[Field]int, len(e.layout.Columns))
	for f, idx := range e.layout.Columns {
		cols[f] = idx
	}

	headerCells.Each(func(i int, cell *goquery.Selection) {
		if f, ok := headerField(cellText(cell)); ok {
			cols[f] = i
		}
	})

	return cols
}

// headerRow finds the header row of a table: the first row in thead, the
// first row made of th cells, or a first row carrying known labels.
func headerRow(t *goquery.Selection) *goquery.Selection {
	rows := ownRows(t)

	if h := rows.FilterFunction(func(_ int, r *goquery.Selection) bool {
		return goquery.NodeName(r.Parent()) == "thead"
	}).First(); h.Length() > 0 {
		return h
	}

	if h := rows.FilterFunction(func(_ int, r *goquery.Selection) bool {
		return r.ChildrenFiltered("th").Length() > 0 && r.ChildrenFiltered("td").Length() == 0
	}).First(); h.Length() > 0 {
		return h
	}

	first := rows.First()
	if first.Length() == 0 {
		return nil
	}
	labelled := false
	first.ChildrenFiltered("td").Each(func(_ int, cell *goquery.Selection) {
		if _, ok := headerField(cellText(cell)); ok {
			labelled = true
		}
	})
	if labelled {
		return first
	}
	return nil
}

// dataRows returns the table's rows that hold td cells, header excluded.
func (e *Extractor) dataRows(t, header *goquery.Selection) *goquery.Selection {
	return ownRows(t).FilterFunction(func(_ int, r *goquery.Selection) bool {
		if header != nil && r.IsSelection(header) {
			return false
		}
		return r.ChildrenFiltered("td").Length() > 0
	})
}

// ownRows returns the rows of t, leaving out rows of nested tables.
func ownRows(t *goquery.Selection) *goquery.Selection {
	return t.Find("tr").FilterFunction(func(_ int, r *goquery.Selection) bool {
		return r.Closest("table").IsSelection(t)
	})
}

// hasNext reports whether the pagination list links past the current page.
func (e *Extractor) hasNext(doc *goquery.Document, page int) bool {
	next := false

	doc.Find(e.layout.PaginationSelector).EachWithBreak(func(_ int, li *goquery.Selection) bool {
		if li.HasClass("disabled") {
			return true
		}
		link := li.Find("a").First()

		title := li.AttrOr("title", "") + " " + link.AttrOr("title", "")
		if strings.Contains(title, "Επόμενη") || strings.Contains(title, "Next") {
			next = true
			return false
		}

		if link.Length() == 0 {
			return true
		}

		if n, err := strconv.Atoi(cellText(link)); err == nil && n > page {
			next = true
			return false
		}

		if m := startPagePattern.FindStringSubmatch(link.AttrOr("onclick", "")); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > page {
				next = true
				return false
			}
		}

		return true
	})

	return next
}

// isNoResults reports whether the page explicitly says there are no results.
func (e *Extractor) isNoResults(doc *goquery.Document) bool {
	if e.layout.NoResultsSelector != "" && doc.Find(e.layout.NoResultsSelector).Length() > 0 {
		return true
	}

	text := strings.ToLower(cellText(doc.Find("body")))
	for _, phrase := range e.layout.NoResultsTexts {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// cellText returns the selection's text with whitespace collapsed.
func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
