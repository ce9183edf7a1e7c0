// Package clp holds the immutable hazard-classification reference data
// (harmonised CLP entries plus worst-case speciation assumptions) and the
// resolver that maps lab rows onto it.
package clp

import (
	"strings"

	"github.com/shopspring/decimal"
)

// HazardClass is one harmonised classification entry for a substance.
type HazardClass struct {
	// Class is the CLP hazard class, e.g. "Carc." or "Aquatic Acute".
	Class string `json:"class"`
	// Category within the class, e.g. "1A", "1B", "2".
	Category string `json:"category"`
	// HCode is the H-statement, e.g. "H350", "H301", "H400".
	HCode string `json:"hCode"`
	// Route is the exposure route when the classification is route-specific.
	Route string `json:"route,omitempty"`
}

// MFactors hold the aquatic-toxicity multipliers used by HP14 summation.
// A nil factor means the regulation default of 1 applies.
type MFactors struct {
	Acute   *decimal.Decimal `json:"acute,omitempty"`
	Chronic *decimal.Decimal `json:"chronic,omitempty"`
}

// Substance is one CAS-keyed reference entry.
type Substance struct {
	Name          string        `json:"name"`
	HazardClasses []HazardClass `json:"hazardClasses"`
	MFactors      MFactors      `json:"mFactors"`
	// SCLs are specific concentration limits overriding generic ones,
	// keyed "Class.Category" (e.g. "Repr.1A"), in % w/w.
	SCLs map[string]decimal.Decimal `json:"scls"`
}

// HasHCode reports whether the substance carries the exact H-code.
func (s *Substance) HasHCode(code string) bool {
	for _, hc := range s.HazardClasses {
		if hc.HCode == code {
			return true
		}
	}
	return false
}

// FindHCodePrefix returns the first hazard class whose H-code starts with
// the prefix ("H350" matches "H350i", "H360" matches "H360FD").
func (s *Substance) FindHCodePrefix(prefix string) (HazardClass, bool) {
	for _, hc := range s.HazardClasses {
		if strings.HasPrefix(hc.HCode, prefix) {
			return hc, true
		}
	}
	return HazardClass{}, false
}

// SCL returns the specific concentration limit for a "Class.Category" key.
func (s *Substance) SCL(key string) (decimal.Decimal, bool) {
	v, ok := s.SCLs[key]
	return v, ok
}

// AcuteM returns the acute M-factor, defaulting to 1.
func (s *Substance) AcuteM() decimal.Decimal {
	if s.MFactors.Acute != nil {
		return *s.MFactors.Acute
	}
	return decimal.NewFromInt(1)
}

// ChronicM returns the chronic M-factor, defaulting to 1.
func (s *Substance) ChronicM() decimal.Decimal {
	if s.MFactors.Chronic != nil {
		return *s.MFactors.Chronic
	}
	return decimal.NewFromInt(1)
}

// MetalSpeciation maps an elemental lab total to its worst-case compound.
type MetalSpeciation struct {
	// Substance is the normalized report name, e.g. "arsenik".
	Substance string `json:"substance"`
	// Compound is the worst-case form, e.g. "As2O3".
	Compound string `json:"compound"`
	CAS      string `json:"cas"`
	// ConversionFactor converts element mass to compound mass.
	ConversionFactor decimal.Decimal `json:"conversionFactor"`
	ConversionNote   string          `json:"conversionNote,omitempty"`
}

// DirectSpeciation maps a substance that already is a known compound.
type DirectSpeciation struct {
	Substance string `json:"substance"`
	CAS       string `json:"cas"`
}

type substanceDB struct {
	Version     string                `json:"version"`
	Description string                `json:"description"`
	Substances  map[string]*Substance `json:"substances"`
}

type speciationTable struct {
	Version     string             `json:"version"`
	Description string             `json:"description"`
	Metals      []MetalSpeciation  `json:"metals"`
	Direct      []DirectSpeciation `json:"direct"`
}
