package extract

import "strings"

// Field identifies one extracted column.
type Field int

// Extracted fields. Sequence and municipality are never read from the page.
const (
	FieldPositionCode Field = iota
	FieldCategory
	FieldCompany
	FieldAddress
)

func (f Field) String() string {
	switch f {
	case FieldPositionCode:
		return "position_code"
	case FieldCategory:
		return "category"
	case FieldCompany:
		return "company"
	case FieldAddress:
		return "address"
	default:
		return "unknown"
	}
}

var fields = []Field{FieldPositionCode, FieldCategory, FieldCompany, FieldAddress}

// Layout describes the structure of a result page.
type Layout struct {
	// TableSelector matches candidate results tables.
	TableSelector string

	// PaginationSelector matches the pagination list items.
	PaginationSelector string

	// NoResultsSelector matches an explicit "no results" element.
	NoResultsSelector string

	// NoResultsTexts are lower-case phrases that mark a page without
	// results when no table is present.
	NoResultsTexts []string

	// Columns holds the default cell index of every field. Recognised
	// header labels override these per table.
	Columns map[Field]int

	// Capacity is the number of rows a full page carries. A page with
	// fewer data rows is the last one. Zero disables the check.
	Capacity int
}

// DefaultCapacity is the number of rows the registry shows per page.
const DefaultCapacity = 20

// DefaultLayout returns the layout of keraies.eett.gr result pages.
func DefaultLayout() Layout {
	return Layout{
		TableSelector:      "table",
		PaginationSelector: "ul.pagination li",
		NoResultsSelector:  ".no-results, .noresults, #noResults",
		NoResultsTexts: []string{
			"δεν βρέθηκαν",
			"δεν υπάρχουν αποτελέσματα",
			"no results",
		},
		Columns: map[Field]int{
			FieldPositionCode: 0,
			FieldCategory:     1,
			FieldCompany:      2,
			FieldAddress:      3,
		},
		Capacity: DefaultCapacity,
	}
}

// headerField maps a header cell label to a field.
func headerField(label string) (Field, bool) {
	switch {
	case strings.Contains(label, "Κωδ.") && strings.Contains(strings.ToLower(label), "θέσης"):
		return FieldPositionCode, true
	case strings.Contains(label, "Κατηγορία"):
		return FieldCategory, true
	case strings.Contains(label, "Εταιρία"), strings.Contains(label, "Εταιρεία"):
		return FieldCompany, true
	case strings.Contains(label, "Διεύθυνση"):
		return FieldAddress, true
	default:
		return 0, false
	}
}

// cellsNeeded is the minimum number of cells a row must have.
func cellsNeeded(columns map[Field]int) int {
	needed := 0
	for _, idx := range columns {
		if idx+1 > needed {
			needed = idx + 1
		}
	}
	return needed
}
