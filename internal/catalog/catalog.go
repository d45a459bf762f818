package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/iancoleman/orderedmap"
	"github.com/rs/zerolog"
	"github.com/rshade/ec2-pricing-scraper/internal/natsort"
)

// RegionPriceMap maps region identifiers to on-demand USD prices. Regions
// with no available price are absent, never zero-filled.
type RegionPriceMap map[string]float64

// PriceTable maps instance type identifiers to their per-region prices. A
// row may be empty when an instance type was observed somewhere but priced
// nowhere.
type PriceTable map[string]RegionPriceMap

// Store reads and rewrites the pricing catalog file. The file holds one JSON
// document with an "updated" Unix timestamp and a "compute" section of
// per-product-family price tables; any other sections ride along untouched.
type Store struct {
	path   string
	logger zerolog.Logger
	now    func() time.Time
}

// NewStore returns a Store for the catalog file at path.
func NewStore(path string, logger zerolog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

// Update overlays freshly scraped product-family tables onto the catalog's
// compute section and rewrites the file. Each scraped family replaces the
// stored family wholesale; families that were not scraped stay as they are.
// When the overlay changes nothing the file is left alone, byte for byte,
// and the updated timestamp does not advance. Reports whether the file was
// rewritten.
func (s *Store) Update(tables map[string]PriceTable) (bool, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return false, fmt.Errorf("read catalog: %w", err)
	}

	doc := orderedmap.New()
	if err := json.Unmarshal(raw, doc); err != nil {
		return false, fmt.Errorf("parse catalog %s: %w", s.path, err)
	}

	baseline := deepCopy(doc)

	if err := overlayCompute(doc, tables); err != nil {
		return false, fmt.Errorf("catalog %s: %w", s.path, err)
	}

	if equalValue(doc, baseline) {
		s.logger.Info().Str("path", s.path).Msg("Nothing has changed, skipping update")
		return false, nil
	}

	doc.Set("updated", float64(s.now().Unix()))

	content, err := encode(sortTree(doc))
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(s.path, content, 0o644); err != nil {
		return false, fmt.Errorf("write catalog: %w", err)
	}

	s.logger.Info().
		Str("path", s.path).
		Int("bytes", len(content)).
		Int("families", len(tables)).
		Msg("Pricing catalog updated")
	return true, nil
}

// Canonicalize reads the catalog file and returns its canonical rendering:
// every object's keys in natural order, 4-space indentation, trailing
// whitespace stripped, no trailing newline. A file already in canonical form
// renders to its own bytes.
func (s *Store) Canonicalize() ([]byte, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	doc := orderedmap.New()
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", s.path, err)
	}
	return encode(sortTree(doc))
}

// overlayCompute writes each scraped family table into the compute section.
// The merge is shallow at the family level: a scraped family replaces the
// stored one, it does not mix with it.
func overlayCompute(doc *orderedmap.OrderedMap, tables map[string]PriceTable) error {
	raw, ok := doc.Get("compute")
	if !ok {
		return fmt.Errorf("no compute section")
	}
	compute, ok := asOrderedMap(raw)
	if !ok {
		return fmt.Errorf("compute section is not an object")
	}

	families := make([]string, 0, len(tables))
	for family := range tables {
		families = append(families, family)
	}
	sort.Strings(families)

	for _, family := range families {
		compute.Set(family, tableValue(tables[family]))
	}
	doc.Set("compute", compute)
	return nil
}

// tableValue converts a typed price table into the document tree shape.
// Keys go in plain string order here; the natural sort pass on the whole
// tree settles the final order.
func tableValue(table PriceTable) *orderedmap.OrderedMap {
	instances := make([]string, 0, len(table))
	for instance := range table {
		instances = append(instances, instance)
	}
	sort.Strings(instances)

	out := orderedmap.New()
	for _, instance := range instances {
		prices := table[instance]
		regions := make([]string, 0, len(prices))
		for region := range prices {
			regions = append(regions, region)
		}
		sort.Strings(regions)

		row := orderedmap.New()
		for _, region := range regions {
			row.Set(region, prices[region])
		}
		out.Set(instance, row)
	}
	return out
}

// asOrderedMap normalizes the two shapes objects take in a decoded document
// tree: the root is a pointer, nested objects are values.
func asOrderedMap(v interface{}) (*orderedmap.OrderedMap, bool) {
	switch m := v.(type) {
	case *orderedmap.OrderedMap:
		return m, true
	case orderedmap.OrderedMap:
		return &m, true
	}
	return nil, false
}

// deepCopy clones a document tree so the overlay can be diffed against the
// state read from disk.
func deepCopy(v interface{}) interface{} {
	if m, ok := asOrderedMap(v); ok {
		out := orderedmap.New()
		for _, k := range m.Keys() {
			val, _ := m.Get(k)
			out.Set(k, deepCopy(val))
		}
		return out
	}
	if list, ok := v.([]interface{}); ok {
		out := make([]interface{}, len(list))
		for i, item := range list {
			out[i] = deepCopy(item)
		}
		return out
	}
	return v
}

// equalValue compares two document trees structurally. Object key order is
// irrelevant, array order matters, scalars compare by value.
func equalValue(a, b interface{}) bool {
	if am, ok := asOrderedMap(a); ok {
		bm, ok := asOrderedMap(b)
		if !ok || len(am.Keys()) != len(bm.Keys()) {
			return false
		}
		for _, k := range am.Keys() {
			av, _ := am.Get(k)
			bv, ok := bm.Get(k)
			if !ok || !equalValue(av, bv) {
				return false
			}
		}
		return true
	}
	if alist, ok := a.([]interface{}); ok {
		blist, ok := b.([]interface{})
		if !ok || len(alist) != len(blist) {
			return false
		}
		for i := range alist {
			if !equalValue(alist[i], blist[i]) {
				return false
			}
		}
		return true
	}
	if _, ok := asOrderedMap(b); ok {
		return false
	}
	if _, ok := b.([]interface{}); ok {
		return false
	}
	return a == b
}

// sortTree rebuilds a document tree with every object's keys in natural
// order. Arrays and scalar leaves pass through unchanged.
func sortTree(v interface{}) interface{} {
	m, ok := asOrderedMap(v)
	if !ok {
		return v
	}
	keys := append([]string(nil), m.Keys()...)
	natsort.Sort(keys)

	out := orderedmap.New()
	for _, k := range keys {
		val, _ := m.Get(k)
		out.Set(k, sortTree(val))
	}
	return out
}

// encode serializes a document tree as 4-space-indented JSON with trailing
// whitespace stripped from every line and no trailing newline.
func encode(v interface{}) ([]byte, error) {
	content, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return []byte(strings.Join(lines, "\n")), nil
}
