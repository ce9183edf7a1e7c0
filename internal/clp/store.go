package clp

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed data/clp-substances.json
var substancesJSON []byte

//go:embed data/speciation-assumptions.json
var speciationJSON []byte

// Store is the read-only reference data shared by the resolver and the
// hazard evaluator. It is loaded once per process and never mutated, so
// concurrent readers need no locking.
type Store struct {
	db         substanceDB
	speciation speciationTable
	metalsBy   map[string]*MetalSpeciation
	directsBy  map[string]*DirectSpeciation
}

var (
	defaultOnce  sync.Once
	defaultStore *Store
)

// Default returns the process-wide store backed by the embedded reference
// data. Malformed or internally-inconsistent data is a build defect, so it
// panics rather than returning an error.
func Default() *Store {
	defaultOnce.Do(func() {
		st, err := newStore(substancesJSON, speciationJSON)
		if err != nil {
			panic(fmt.Sprintf("clp: embedded reference data is invalid: %v", err))
		}
		defaultStore = st
	})
	return defaultStore
}

func newStore(substancesRaw, speciationRaw []byte) (*Store, error) {
	st := &Store{}
	if err := json.Unmarshal(substancesRaw, &st.db); err != nil {
		return nil, fmt.Errorf("decode substance database: %w", err)
	}
	if err := json.Unmarshal(speciationRaw, &st.speciation); err != nil {
		return nil, fmt.Errorf("decode speciation table: %w", err)
	}
	if len(st.db.Substances) == 0 {
		return nil, fmt.Errorf("substance database is empty")
	}

	st.metalsBy = make(map[string]*MetalSpeciation, len(st.speciation.Metals))
	for i := range st.speciation.Metals {
		m := &st.speciation.Metals[i]
		if _, ok := st.db.Substances[m.CAS]; !ok {
			return nil, fmt.Errorf("speciation entry %q references CAS %s missing from substance database", m.Substance, m.CAS)
		}
		st.metalsBy[m.Substance] = m
	}
	st.directsBy = make(map[string]*DirectSpeciation, len(st.speciation.Direct))
	for i := range st.speciation.Direct {
		d := &st.speciation.Direct[i]
		if _, ok := st.db.Substances[d.CAS]; !ok {
			return nil, fmt.Errorf("speciation entry %q references CAS %s missing from substance database", d.Substance, d.CAS)
		}
		st.directsBy[d.Substance] = d
	}
	return st, nil
}

// Lookup returns the reference entry for a CAS number.
func (st *Store) Lookup(cas string) (*Substance, bool) {
	s, ok := st.db.Substances[cas]
	return s, ok
}

// Version returns the substance database version label.
func (st *Store) Version() string {
	return st.db.Version
}

// Metals returns the metal speciation assumptions.
func (st *Store) Metals() []MetalSpeciation {
	return st.speciation.Metals
}

// Directs returns the direct-compound speciation entries.
func (st *Store) Directs() []DirectSpeciation {
	return st.speciation.Direct
}
