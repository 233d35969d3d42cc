package core

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Polarity is the ionization mode an adduct belongs to.
type Polarity int

const (
	Positive Polarity = iota
	Negative
)

func (p Polarity) String() string {
	if p == Negative {
		return "negative"
	}
	return "positive"
}

// Sign returns the suffix used in derived column names.
func (p Polarity) Sign() string {
	if p == Negative {
		return "-"
	}
	return "+"
}

// ParsePolarity accepts "positive"/"pos"/"+" and "negative"/"neg"/"-".
func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "pos", "+":
		return Positive, nil
	case "negative", "neg", "-":
		return Negative, nil
	}
	return Positive, fmt.Errorf("invalid polarity %q", s)
}

// AdductSet stores adduct definitions (label -> mass delta) for one polarity,
// keeping the order in which labels were added.
type AdductSet struct {
	deltas map[string]float64
	order  []string
}

// NewAdductSet creates an empty adduct set
func NewAdductSet() *AdductSet {
	return &AdductSet{
		deltas: make(map[string]float64),
	}
}

// Add adds or updates an adduct
func (s *AdductSet) Add(label string, delta float64) {
	if _, ok := s.deltas[label]; !ok {
		s.order = append(s.order, label)
	}
	s.deltas[label] = delta
}

// Delta returns the mass delta for an adduct label
func (s *AdductSet) Delta(label string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	d, ok := s.deltas[label]
	return d, ok
}

// Labels returns labels in insertion order.
func (s *AdductSet) Labels() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// Len returns the number of adducts in the set.
func (s *AdductSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// LoadFromCSV loads adducts from a CSV file (format: adduct,delta)
func (s *AdductSet) LoadFromCSV(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	// Skip header line
	if scanner.Scan() {
		// header line
	}

	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			return fmt.Errorf("line %d: invalid format, expected at least 2 comma-separated fields", lineNum)
		}

		label := strings.TrimSpace(parts[0])
		deltaStr := strings.TrimSpace(parts[1])

		delta, err := strconv.ParseFloat(deltaStr, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid mass delta '%s': %w", lineNum, deltaStr, err)
		}

		s.Add(label, delta)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading CSV: %w", err)
	}

	return nil
}

// AdductTable holds the two independent polarity sets.
type AdductTable struct {
	Positive *AdductSet
	Negative *AdductSet
}

// NewAdductTable creates a table with two empty sets.
func NewAdductTable() *AdductTable {
	return &AdductTable{Positive: NewAdductSet(), Negative: NewAdductSet()}
}

// Set returns the set for a polarity.
func (t *AdductTable) Set(p Polarity) *AdductSet {
	if t == nil {
		return nil
	}
	if p == Negative {
		return t.Negative
	}
	return t.Positive
}

// Labels returns the labels of one polarity in file order.
func (t *AdductTable) Labels(p Polarity) []string {
	return t.Set(p).Labels()
}

// Ion is one derived ion mass of a compound.
type Ion struct {
	Column   string // "[M+H]+"
	Label    string // "M+H"
	Polarity Polarity
	MZ       float64
}

// ColumnName returns the derived column name for an adduct label.
func ColumnName(label string, p Polarity) string {
	return "[" + label + "]" + p.Sign()
}

// GenerateAdducts applies the selected adduct deltas to a base mass. Positive
// ions come first, each polarity in selection order. Empty selections yield no
// ions for that polarity.
func GenerateAdducts(mass float64, table *AdductTable, positive, negative []string) ([]Ion, error) {
	if table == nil {
		return nil, ErrMissingAdductTable
	}
	ions := make([]Ion, 0, len(positive)+len(negative))
	for _, sel := range []struct {
		polarity Polarity
		labels   []string
	}{{Positive, positive}, {Negative, negative}} {
		set := table.Set(sel.polarity)
		for _, label := range sel.labels {
			delta, ok := set.Delta(label)
			if !ok {
				return nil, &UnknownAdductError{Label: label, Polarity: sel.polarity}
			}
			ions = append(ions, Ion{
				Column:   ColumnName(label, sel.polarity),
				Label:    label,
				Polarity: sel.polarity,
				MZ:       mass + delta,
			})
		}
	}
	return ions, nil
}

// ValidateSelection checks that every selected label exists for its polarity.
func (t *AdductTable) ValidateSelection(positive, negative []string) error {
	if t == nil {
		return ErrMissingAdductTable
	}
	for _, label := range positive {
		if _, ok := t.Positive.Delta(label); !ok {
			return &UnknownAdductError{Label: label, Polarity: Positive}
		}
	}
	for _, label := range negative {
		if _, ok := t.Negative.Delta(label); !ok {
			return &UnknownAdductError{Label: label, Polarity: Negative}
		}
	}
	return nil
}

// polarityKey maps a file key to a polarity. "positve" is accepted because
// older adduct files were written with that spelling.
func polarityKey(key string) (Polarity, bool) {
	switch strings.ToLower(key) {
	case "positive", "positve":
		return Positive, true
	case "negative":
		return Negative, true
	}
	return Positive, false
}

// LoadAdductTableJSON reads {"positive": {"M+H": 1.007...}, "negative": {...}}
// keeping the key order of each polarity map.
func LoadAdductTableJSON(r io.Reader) (*AdductTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read adduct table: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	table := NewAdductTable()
	found := false
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("adduct table: %w", err)
		}
		name, _ := key.(string)
		polarity, ok := polarityKey(name)
		if !ok {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("adduct table: %w", err)
			}
			continue
		}
		found = true
		if err := decodeOrderedDeltas(dec, table.Set(polarity)); err != nil {
			return nil, fmt.Errorf("adduct table %s: %w", polarity, err)
		}
	}
	if !found {
		return nil, ErrMissingAdductTable
	}
	return table, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("adduct table: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("adduct table: expected %q", want)
	}
	return nil
}

func decodeOrderedDeltas(dec *json.Decoder, set *AdductSet) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return err
		}
		label, _ := key.(string)
		var delta float64
		if err := dec.Decode(&delta); err != nil {
			return fmt.Errorf("%q: %w", label, err)
		}
		set.Add(label, delta)
	}
	return expectDelim(dec, '}')
}

// LoadAdductTableYAML reads the same layout as LoadAdductTableJSON from YAML.
func LoadAdductTableYAML(r io.Reader) (*AdductTable, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to read adduct table: %w", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("adduct table: expected a mapping")
	}
	root := doc.Content[0]

	table := NewAdductTable()
	found := false
	for i := 0; i+1 < len(root.Content); i += 2 {
		polarity, ok := polarityKey(root.Content[i].Value)
		if !ok {
			continue
		}
		found = true
		deltas := root.Content[i+1]
		if deltas.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("adduct table %s: expected a mapping", polarity)
		}
		for j := 0; j+1 < len(deltas.Content); j += 2 {
			label := deltas.Content[j].Value
			var delta float64
			if err := deltas.Content[j+1].Decode(&delta); err != nil {
				return nil, fmt.Errorf("adduct table %s %q: %w", polarity, label, err)
			}
			table.Set(polarity).Add(label, delta)
		}
	}
	if !found {
		return nil, ErrMissingAdductTable
	}
	return table, nil
}

// DefaultAdductTable returns a table pre-loaded with common ESI adducts
func DefaultAdductTable() *AdductTable {
	t := NewAdductTable()

	t.Positive.Add("M+H", 1.0072766)
	t.Positive.Add("M+Na", 22.9892213)
	t.Positive.Add("M+K", 38.9631585)
	t.Positive.Add("M+NH4", 18.0338257)
	t.Positive.Add("M+H-H2O", -17.0032880)
	t.Positive.Add("M", -0.0005484)

	t.Negative.Add("M-H", -1.0072766)
	t.Negative.Add("M+Cl", 34.9694011)
	t.Negative.Add("M-H-H2O", -19.0178413)
	t.Negative.Add("M+CH3COO", 59.0138527)
	t.Negative.Add("M+HCOO", 44.9982026)

	return t
}
