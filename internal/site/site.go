package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/keraies/antennascan/internal/model"
)

// Default endpoint paths, relative to the site's base URL.
const (
	DefaultSearchPath = "anazhthsh.php"
	DefaultDataPath   = "getData.php"
)

// Form actions understood by the data endpoint.
const (
	actionSearch = "search"
	actionPage   = "page"
)

// ErrNoMunicipalityOptions is returned when the search form carries no
// municipality select.
var ErrNoMunicipalityOptions = errors.New("search form has no municipality options")

// Fetcher performs the HTTP requests. *fetch.Client implements it.
type Fetcher interface {
	Get(ctx context.Context, path string, params url.Values) (*model.RawPage, error)
	PostForm(ctx context.Context, path string, form url.Values, referer string) (*model.RawPage, error)
}

// Site requests result pages from the registry.
type Site struct {
	fetcher    Fetcher
	searchPath string
	dataPath   string
	logger     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// session is the search form state collected for one municipality code.
type session struct {
	referer string
	hidden  url.Values
}

// Option configures a Site.
type Option func(*Site)

// WithSearchPath overrides the search form path.
func WithSearchPath(p string) Option {
	return func(s *Site) {
		if p != "" {
			s.searchPath = p
		}
	}
}

// WithDataPath overrides the result page endpoint path.
func WithDataPath(p string) Option {
	return func(s *Site) {
		if p != "" {
			s.dataPath = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Site) {
		s.logger = l
	}
}

// New creates a Site that issues its requests through f.
func New(f Fetcher, opts ...Option) *Site {
	s := &Site{
		fetcher:    f,
		searchPath: DefaultSearchPath,
		dataPath:   DefaultDataPath,
		logger:     slog.Default(),
		sessions:   make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchPage returns result page n (1-based) for the municipality code.
// The first call for a code loads the search form to pick up its hidden
// fields.
func (s *Site) FetchPage(ctx context.Context, code string, page int) (*model.RawPage, error) {
	if page < 1 {
		return nil, fmt.Errorf("invalid page number %d", page)
	}

	sess, err := s.session(ctx, code)
	if err != nil {
		return nil, err
	}

	action := actionPage
	if page == 1 {
		action = actionSearch
	}

	form := url.Values{}
	for k, v := range sess.hidden {
		form[k] = append([]string(nil), v...)
	}
	form.Set("address", "")
	form.Set("municipality", code)
	form.Set("siteId", "")
	form.Set("startPage", strconv.Itoa(page))
	form.Set("myAction", action)

	s.logger.Debug("requesting result page", "code", code, "page", page, "action", action)

	return s.fetcher.PostForm(ctx, s.dataPath, form, sess.referer)
}

// Municipalities reads the municipality options of the live search form.
// Options with an empty value or label are skipped.
func (s *Site) Municipalities(ctx context.Context) ([]model.MunicipalityEntry, error) {
	raw, err := s.fetcher.Get(ctx, s.searchPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load search form: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search form: %w", err)
	}

	sel := doc.Find(`select[name="municipality"]`).First()
	if sel.Length() == 0 {
		return nil, ErrNoMunicipalityOptions
	}

	var entries []model.MunicipalityEntry
	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		code := strings.TrimSpace(opt.AttrOr("value", ""))
		name := strings.Join(strings.Fields(opt.Text()), " ")
		if code == "" || name == "" {
			return
		}
		entries = append(entries, model.MunicipalityEntry{Name: name, Code: code})
	})

	s.logger.Debug("loaded municipality options", "count", len(entries))
	return entries, nil
}

func (s *Site) session(ctx context.Context, code string) (*session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[code]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}

	raw, err := s.fetcher.Get(ctx, s.searchPath, nil)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search form: %w", err)
	}

	hidden := url.Values{}
	doc.Find(`input[type="hidden"]`).Each(func(_ int, in *goquery.Selection) {
		name, ok := in.Attr("name")
		if !ok || name == "" {
			return
		}
		hidden.Set(name, in.AttrOr("value", ""))
	})
	s.logger.Debug("collected hidden form fields", "count", len(hidden))

	sess = &session{referer: raw.URL, hidden: hidden}

	s.mu.Lock()
	s.sessions[code] = sess
	s.mu.Unlock()

	return sess, nil
}
