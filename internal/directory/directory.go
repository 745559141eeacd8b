package directory

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/keraies/antennascan/internal/model"
)

//go:embed municipalities.yaml
var embeddedTable []byte

// minPartialRunes is the shortest query that is tried as a partial match.
// Shorter fragments match too many names to be useful.
const minPartialRunes = 3

// maxSuggestions bounds the names offered for an unknown municipality.
const maxSuggestions = 3

// suggestionThreshold is the minimum Jaro-Winkler similarity of a suggestion.
const suggestionThreshold = 0.75

// Table is the YAML shape of a municipality table.
type Table struct {
	Municipalities []model.MunicipalityEntry `yaml:"municipalities"`
}

// Directory is an immutable municipality name to search code mapping.
type Directory struct {
	entries []model.MunicipalityEntry
	byName  map[string]int
	byFold  map[string][]int
	folded  []string
}

// New builds a Directory from entries. Entries are copied and ordered by
// Greek collation of their display names. Codes may be empty, as in the
// embedded names-only table.
func New(entries []model.MunicipalityEntry) (*Directory, error) {
	if len(entries) == 0 {
		return nil, errors.New("municipality table is empty")
	}

	sorted := slices.Clone(entries)
	coll := collate.New(language.Greek)
	sort.SliceStable(sorted, func(i, j int) bool {
		return coll.CompareString(sorted[i].Name, sorted[j].Name) < 0
	})

	d := &Directory{
		entries: sorted,
		byName:  make(map[string]int, len(sorted)),
		byFold:  make(map[string][]int, len(sorted)),
		folded:  make([]string, len(sorted)),
	}

	for i, e := range sorted {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("municipality entry %d has an empty name", i)
		}
		if _, dup := d.byName[name]; dup {
			return nil, fmt.Errorf("municipality %q is listed twice", name)
		}
		sorted[i].Name = name
		sorted[i].Code = strings.TrimSpace(e.Code)
		d.byName[name] = i

		f := Fold(name)
		d.folded[i] = f
		d.byFold[f] = append(d.byFold[f], i)
	}

	return d, nil
}

// Parse builds a Directory from a YAML table.
func Parse(data []byte) (*Directory, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse municipality table: %w", err)
	}
	return New(t.Municipalities)
}

// Default builds the Directory from the embedded names-only table.
func Default() (*Directory, error) {
	return Parse(embeddedTable)
}

// LoadFile builds a Directory from a YAML table on disk.
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided table path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read municipality table: %w", err)
	}
	return Parse(data)
}

// Marshal encodes entries in the table format read by Parse.
func Marshal(entries []model.MunicipalityEntry) ([]byte, error) {
	return yaml.Marshal(Table{Municipalities: entries})
}

// Len returns the number of municipalities.
func (d *Directory) Len() int {
	return len(d.entries)
}

// HasCodes reports whether every entry carries a search code.
func (d *Directory) HasCodes() bool {
	for _, e := range d.entries {
		if e.Code == "" {
			return false
		}
	}
	return true
}

// List returns all entries ordered by display name.
func (d *Directory) List() []model.MunicipalityEntry {
	return slices.Clone(d.entries)
}

// Resolve finds the entry for name. It returns *UnknownMunicipalityError or
// *AmbiguousMunicipalityError, both matching ErrUnknownMunicipality.
func (d *Directory) Resolve(name string) (model.MunicipalityEntry, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return model.MunicipalityEntry{}, &UnknownMunicipalityError{Name: name}
	}

	if i, ok := d.byName[trimmed]; ok {
		return d.entries[i], nil
	}

	q := Fold(trimmed)
	if q == "" {
		return model.MunicipalityEntry{}, &UnknownMunicipalityError{Name: name}
	}

	switch idx := d.byFold[q]; len(idx) {
	case 0:
	case 1:
		return d.entries[idx[0]], nil
	default:
		return model.MunicipalityEntry{}, &AmbiguousMunicipalityError{Name: name, Candidates: d.names(idx)}
	}

	if len([]rune(q)) >= minPartialRunes {
		var idx []int
		for i, f := range d.folded {
			if strings.Contains(f, q) {
				idx = append(idx, i)
			}
		}
		switch len(idx) {
		case 0:
		case 1:
			return d.entries[idx[0]], nil
		default:
			return model.MunicipalityEntry{}, &AmbiguousMunicipalityError{Name: name, Candidates: d.names(idx)}
		}
	}

	return model.MunicipalityEntry{}, &UnknownMunicipalityError{Name: name, Suggestions: d.suggest(q)}
}

func (d *Directory) names(idx []int) []string {
	names := make([]string, len(idx))
	for i, j := range idx {
		names[i] = d.entries[j].Name
	}
	return names
}

// suggest ranks entries by Jaro-Winkler similarity to the folded query.
func (d *Directory) suggest(q string) []string {
	type scored struct {
		name  string
		score float64
	}

	var candidates []scored
	for i, f := range d.folded {
		score := matchr.JaroWinkler(q, f, false)
		if score >= suggestionThreshold {
			candidates = append(candidates, scored{name: d.entries[i].Name, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}
