// Package sitetest provides a fake antenna registry for tests.
package sitetest

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/keraies/antennascan/internal/model"
)

// Row is one table row served by the fake registry.
type Row struct {
	PositionCode string
	Category     string
	Company      string
	Address      string
}

// Page is one result page of a municipality.
type Page struct {
	Rows []Row

	// Next adds a pagination list linking to the following page.
	Next bool

	// Status, when set, is returned instead of a page.
	Status int

	// Body, when set, is served verbatim instead of a rendered table.
	Body string
}

// Rows returns n synthetic rows numbered from first.
func Rows(first, n int) []Row {
	rows := make([]Row, 0, n)
	for i := first; i < first+n; i++ {
		rows = append(rows, Row{
			PositionCode: fmt.Sprintf("10%05d", i),
			Category:     "Σταθμός Βάσης",
			Company:      []string{"COSMOTE", "VODAFONE", "NOVA"}[i%3],
			Address:      fmt.Sprintf("Οδός Αγίου Γεωργίου %d", i),
		})
	}
	return rows
}

// ResultsPage renders a result page the way getData.php does.
func ResultsPage(rows []Row, page int, next bool) string {
	var sb strings.Builder
	sb.WriteString(`<div class="table-responsive"><table class="table table-striped">`)
	sb.WriteString(`<thead><tr><th>Κωδ. θέσης</th><th>Κατηγορία</th><th>Εταιρία</th><th>Διεύθυνση</th><th>Δήμος</th></tr></thead><tbody>`)
	for _, r := range rows {
		fmt.Fprintf(&sb, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>ΧΑΛΚΙΔΕΩΝ</td></tr>\n",
			html.EscapeString(r.PositionCode),
			html.EscapeString(r.Category),
			html.EscapeString(r.Company),
			html.EscapeString(r.Address),
		)
	}
	sb.WriteString(`</tbody></table></div>`)

	sb.WriteString(`<ul class="pagination">`)
	for p := 1; p <= page; p++ {
		class := ""
		if p == page {
			class = ` class="active"`
		}
		fmt.Fprintf(&sb, `<li%s><a href="#" onclick="startPage.value='%d';">%d</a></li>`, class, p, p)
	}
	if next {
		fmt.Fprintf(&sb, `<li title="Επόμενη"><a href="#" onclick="startPage.value='%d';">&raquo;</a></li>`, page+1)
	} else {
		sb.WriteString(`<li class="disabled" title="Επόμενη"><a href="#">&raquo;</a></li>`)
	}
	sb.WriteString(`</ul>`)

	return sb.String()
}

// SearchPage renders the search form with the given municipality options
// and hidden fields.
func SearchPage(entries []model.MunicipalityEntry, hidden map[string]string) string {
	var sb strings.Builder
	sb.WriteString(`<html><head><meta charset="utf-8"><title>Αναζήτηση</title></head><body>`)
	sb.WriteString(`<form name="searchForm" method="post" action="getData.php">`)
	for name, value := range hidden {
		fmt.Fprintf(&sb, `<input type="hidden" name="%s" value="%s">`, html.EscapeString(name), html.EscapeString(value))
	}
	sb.WriteString(`<input type="text" name="address" value="">`)
	sb.WriteString(`<select name="municipality"><option value="">-- Επιλέξτε --</option>`)
	for _, e := range entries {
		fmt.Fprintf(&sb, `<option value="%s">%s</option>`, html.EscapeString(e.Code), html.EscapeString(e.Name))
	}
	sb.WriteString(`</select></form></body></html>`)
	return sb.String()
}

// Server is a fake registry.
type Server struct {
	*httptest.Server

	// Hidden are the hidden fields of the search form.
	Hidden map[string]string

	entries []model.MunicipalityEntry
	pages   map[string][]Page

	mu       sync.Mutex
	searches int
	posts    []url.Values
	referers []string
}

// NewServer starts a fake registry serving pages per municipality code.
// Requests past the last configured page get an empty table.
// The server is closed when the test ends.
func NewServer(t testing.TB, entries []model.MunicipalityEntry, pages map[string][]Page) *Server {
	t.Helper()

	s := &Server{
		Hidden:  map[string]string{"formToken": "f00d"},
		entries: entries,
		pages:   pages,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /anazhthsh.php", s.handleSearch)
	mux.HandleFunc("POST /getData.php", s.handleData)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

func (s *Server) handleSearch(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.searches++
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "fake-session", Path: "/"})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(SearchPage(s.entries, s.Hidden)))
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.posts = append(s.posts, r.PostForm)
	s.referers = append(s.referers, r.Referer())
	s.mu.Unlock()

	n, err := strconv.Atoi(r.PostForm.Get("startPage"))
	if err != nil || n < 1 {
		http.Error(w, "bad startPage", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	pages := s.pages[r.PostForm.Get("municipality")]
	if n > len(pages) {
		_, _ = w.Write([]byte(ResultsPage(nil, n, false)))
		return
	}

	page := pages[n-1]
	switch {
	case page.Status != 0:
		http.Error(w, http.StatusText(page.Status), page.Status)
	case page.Body != "":
		_, _ = w.Write([]byte(page.Body))
	default:
		_, _ = w.Write([]byte(ResultsPage(page.Rows, n, page.Next)))
	}
}

// Searches returns how many times the search form was loaded.
func (s *Server) Searches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searches
}

// Posts returns the forms posted to the data endpoint, in order.
func (s *Server) Posts() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.posts...)
}

// Referers returns the Referer header of each data request, in order.
func (s *Server) Referers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.referers...)
}
