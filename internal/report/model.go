// Package report holds the typed lab-report model consumed by the
// classification engines. Reports arrive already parsed and normalized;
// this package never touches raw text.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValueKind distinguishes a measurement from a below-detection bound.
type ValueKind int

const (
	// Measured is a value the lab actually quantified.
	Measured ValueKind = iota
	// BelowDetection is a "less than" value; the true concentration is
	// unknown anywhere below the detection limit.
	BelowDetection
)

// Value is a tagged lab value: either a measurement or a detection limit.
// Callers must branch on Kind; there is no sentinel numeric encoding.
type Value struct {
	kind   ValueKind
	amount decimal.Decimal
}

// NewMeasured wraps a quantified measurement.
func NewMeasured(v decimal.Decimal) Value {
	return Value{kind: Measured, amount: v}
}

// NewBelowDetection wraps a detection limit ("< limit" in the lab report).
func NewBelowDetection(limit decimal.Decimal) Value {
	return Value{kind: BelowDetection, amount: limit}
}

// Kind returns the value tag.
func (v Value) Kind() ValueKind { return v.kind }

// Amount returns the numeric part: the measurement, or the detection limit.
func (v Value) Amount() decimal.Decimal { return v.amount }

// IsBelowDetection reports whether the value is a detection limit.
func (v Value) IsBelowDetection() bool { return v.kind == BelowDetection }

func (v Value) String() string {
	if v.kind == BelowDetection {
		return "< " + v.amount.String()
	}
	return v.amount.String()
}

type valueJSON struct {
	Measured       *decimal.Decimal `json:"measured,omitempty"`
	BelowDetection *decimal.Decimal `json:"belowDetection,omitempty"`
}

// MarshalJSON encodes the tag explicitly so downstream consumers cannot
// confuse a detection limit with a measurement.
func (v Value) MarshalJSON() ([]byte, error) {
	var body valueJSON
	amount := v.amount
	switch v.kind {
	case BelowDetection:
		body.BelowDetection = &amount
	default:
		body.Measured = &amount
	}
	return json.Marshal(body)
}

// UnmarshalJSON decodes the tagged form, rejecting ambiguous payloads.
func (v *Value) UnmarshalJSON(data []byte) error {
	var body valueJSON
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	switch {
	case body.Measured != nil && body.BelowDetection != nil:
		return fmt.Errorf("value has both measured and belowDetection")
	case body.Measured != nil:
		*v = NewMeasured(*body.Measured)
	case body.BelowDetection != nil:
		*v = NewBelowDetection(*body.BelowDetection)
	default:
		return fmt.Errorf("value needs measured or belowDetection")
	}
	return nil
}

// Matrix is the physical medium of a sample. It gates which rulesets apply.
type Matrix string

const (
	MatrixJord   Matrix = "jord"
	MatrixAsfalt Matrix = "asfalt"
)

// ParseMatrix loosely recognizes a matrix from header text in Swedish or
// English. Returns false when no matrix can be recognized.
func ParseMatrix(raw string) (Matrix, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(lower, "jord") || strings.Contains(lower, "soil"):
		return MatrixJord, true
	case strings.Contains(lower, "asfalt") || strings.Contains(lower, "asphalt"):
		return MatrixAsfalt, true
	default:
		return "", false
	}
}

func (m Matrix) String() string {
	switch m {
	case MatrixJord:
		return "Jord"
	case MatrixAsfalt:
		return "Asfalt"
	default:
		return string(m)
	}
}

// Unit is the display unit of a lab value.
type Unit string

const (
	UnitMgPerKgTS Unit = "mg/kg TS"
	UnitMgPerKg   Unit = "mg/kg"
	UnitPercent   Unit = "%"
)

// ParseUnit loosely recognizes a unit string, defaulting to mg/kg TS.
func ParseUnit(raw string) Unit {
	lower := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(lower, "mg/kg") && strings.Contains(lower, "ts"):
		return UnitMgPerKgTS
	case strings.Contains(lower, "mg/kg"):
		return UnitMgPerKg
	case strings.Contains(lower, "%"):
		return UnitPercent
	default:
		return UnitMgPerKgTS
	}
}

// Row is a single analysis line: one substance, one value.
// NormalizedName is the join key into rulesets and the speciation table.
type Row struct {
	RawName        string `json:"rawName"`
	NormalizedName string `json:"normalizedName"`
	Value          Value  `json:"value"`
	Unit           Unit   `json:"unit,omitempty"`
}

// Header carries sample metadata extracted from the report head.
type Header struct {
	LabReportID string `json:"labReportId,omitempty"`
	SampleID    string `json:"sampleId,omitempty"`
	Matrix      Matrix `json:"matrix,omitempty"`
	Date        string `json:"date,omitempty"`
	Project     string `json:"project,omitempty"`
	Lab         string `json:"lab,omitempty"`
}

// Report is one sample's worth of analysis rows. Immutable once built.
type Report struct {
	Header Header `json:"header"`
	Rows   []Row  `json:"rows"`
}
