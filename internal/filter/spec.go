// Package filter evaluates declarative bound/type/sort specifications
// against batches of feature vectors.
package filter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rpindulic/Quaggy/internal/domain"
)

// Spec is a filter specification: the extraction parameters, per-feature
// bounds, allowed item types and the sort directive. Loaded once from
// configuration and read-only thereafter.
type Spec struct {
	HistoryDays int
	BuyMode     domain.TradeMode
	SellMode    domain.TradeMode

	// Min and Max are partial: a feature without an entry is unconstrained
	// on that side.
	Min map[domain.Feature]float64
	Max map[domain.Feature]float64

	// Types is the set of allowed item types. Vectors of any other type
	// never match, regardless of bounds.
	Types map[domain.ItemType]struct{}

	SortBy        domain.Feature
	SortAscending bool
}

// specJSON is the on-disk shape.
type specJSON struct {
	HistoryDays int
	BuyMode     string
	SellMode    string
	Bounds      map[string]boundJSON
	Types       []string
	SortBy      string
	SortOrder   string
}

type boundJSON struct {
	Min *float64
	Max *float64
}

// Parse reads a spec from JSON. Mode names and the sort order are
// case-insensitive; type names may contain spaces. Unrecognized feature or
// type names fail with domain.ErrUnknownType.
func Parse(r io.Reader) (*Spec, error) {
	var raw specJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode filter spec: %w", err)
	}

	buyMode, err := domain.ParseTradeMode(raw.BuyMode)
	if err != nil {
		return nil, fmt.Errorf("BuyMode: %w", err)
	}
	sellMode, err := domain.ParseTradeMode(raw.SellMode)
	if err != nil {
		return nil, fmt.Errorf("SellMode: %w", err)
	}

	s := &Spec{
		HistoryDays: raw.HistoryDays,
		BuyMode:     buyMode,
		SellMode:    sellMode,
		Min:         make(map[domain.Feature]float64),
		Max:         make(map[domain.Feature]float64),
		Types:       make(map[domain.ItemType]struct{}),
	}

	for name, b := range raw.Bounds {
		f, err := domain.ParseFeature(name)
		if err != nil {
			return nil, fmt.Errorf("Bounds: %w", err)
		}
		if b.Min != nil {
			s.Min[f] = *b.Min
		}
		if b.Max != nil {
			s.Max[f] = *b.Max
		}
	}

	for _, name := range raw.Types {
		t, err := domain.ParseItemType(name)
		if err != nil {
			return nil, fmt.Errorf("Types: %w", err)
		}
		s.Types[t] = struct{}{}
	}

	if s.SortBy, err = domain.ParseFeature(raw.SortBy); err != nil {
		return nil, fmt.Errorf("SortBy: %w", err)
	}
	switch strings.ToLower(raw.SortOrder) {
	case "asc":
		s.SortAscending = true
	case "desc":
		s.SortAscending = false
	default:
		return nil, fmt.Errorf("%w: sort order %q must be ASC or DESC", domain.ErrUnknownType, raw.SortOrder)
	}

	return s, nil
}

// Load parses a spec from a JSON file.
func Load(path string) (*Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open filter spec: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func (s *Spec) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "days=%d buy=%s sell=%s sort=%s", s.HistoryDays, s.BuyMode, s.SellMode, s.SortBy)
	if s.SortAscending {
		b.WriteString(" asc")
	} else {
		b.WriteString(" desc")
	}
	return b.String()
}
