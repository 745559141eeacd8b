package model

import "strconv"

// Columns is the fixed column order used by every export format.
var Columns = []string{
	"sequence",
	"position_code",
	"category",
	"company",
	"address",
	"municipality",
}

// AntennaRecord is one antenna installation entry as listed by the source.
type AntennaRecord struct {
	// Sequence is the 1-based position of the record within the whole run.
	// It is assigned by the paginator and never taken from the page.
	Sequence int `json:"sequence"`

	// PositionCode is the installation identifier published by the source.
	// The source may list the same code more than once.
	PositionCode string `json:"position_code"`

	// Category is the installation category as free text.
	Category string `json:"category"`

	// Company is the operator that owns the installation.
	Company string `json:"company"`

	// Address is the installation address as published.
	Address string `json:"address"`

	// Municipality echoes the queried municipality's display name.
	Municipality string `json:"municipality"`
}

// Row returns the record's values in Columns order.
func (r AntennaRecord) Row() []string {
	return []string{
		strconv.Itoa(r.Sequence),
		r.PositionCode,
		r.Category,
		r.Company,
		r.Address,
		r.Municipality,
	}
}

// MunicipalityEntry maps a municipality's display name to the search code
// the site expects in its form.
type MunicipalityEntry struct {
	// Name is the human-readable municipality name, e.g. "Χαλκιδέων".
	Name string `json:"name" yaml:"name"`

	// Code is the value of the municipality option in the search form.
	// It is empty in a names-only table.
	Code string `json:"code,omitempty" yaml:"code,omitempty"`
}
