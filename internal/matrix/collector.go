package matrix

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rpattn/profilematrix/internal/domain"
	"github.com/rpattn/profilematrix/pkg/keypath"
)

// ErrNilProfile is returned when a record reaches the collector without a profile.
var ErrNilProfile = errors.New("record has no profile")

// Collection is the result of walking every profile: the ordered path
// descriptors and, for each leaf path, the distinct values seen there.
type Collection struct {
	Descriptors []domain.PathDescriptor
	values      map[string]*domain.ValueSet

	// DroppedValues counts values observed at a path that is a container in
	// another record. Those values never get a row.
	DroppedValues int
}

// Values returns the sorted value set for a descriptor. Container paths
// never carry values.
func (c Collection) Values(d domain.PathDescriptor) []domain.Value {
	if d.IsContainer {
		return []domain.Value{}
	}
	return c.values[d.Path.Key()].Sorted()
}

type collector struct {
	descriptors map[string]*domain.PathDescriptor
	values      map[string]*domain.ValueSet
}

// Collect walks all profiles depth-first and returns the deduplicated,
// ordered descriptor set with per-path value sets.
//
// A path that holds an object in any record is a container for the whole
// run, even where other records hold a scalar at the same path.
func Collect(records []domain.Record) (Collection, error) {
	c := &collector{
		descriptors: map[string]*domain.PathDescriptor{},
		values:      map[string]*domain.ValueSet{},
	}
	for idx, record := range records {
		if record.Profile == nil {
			return Collection{}, fmt.Errorf("record %d (id %q): %w", idx, record.ID, ErrNilProfile)
		}
		c.walk(record.Profile, keypath.Path{})
	}

	collection := Collection{
		Descriptors: make([]domain.PathDescriptor, 0, len(c.descriptors)),
		values:      map[string]*domain.ValueSet{},
	}
	for key, descriptor := range c.descriptors {
		collection.Descriptors = append(collection.Descriptors, *descriptor)
		set := c.values[key]
		if descriptor.IsContainer {
			collection.DroppedValues += set.Len()
			continue
		}
		if set == nil {
			set = domain.NewValueSet()
		}
		collection.values[key] = set
	}
	SortDescriptors(collection.Descriptors)
	return collection, nil
}

func (c *collector) walk(node map[string]any, prefix keypath.Path) {
	keys := make([]string, 0, len(node))
	for key := range node {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		path := prefix.Child(key)
		value := node[key]
		child, isContainer := value.(map[string]any)
		c.record(path, isContainer)
		if isContainer {
			c.walk(child, path)
			continue
		}
		pathKey := path.Key()
		set, ok := c.values[pathKey]
		if !ok {
			set = domain.NewValueSet()
			c.values[pathKey] = set
		}
		set.Add(domain.Normalize(value))
	}
}

func (c *collector) record(path keypath.Path, isContainer bool) {
	key := path.Key()
	if existing, ok := c.descriptors[key]; ok {
		existing.IsContainer = existing.IsContainer || isContainer
		return
	}
	descriptor := domain.NewPathDescriptor(path, isContainer)
	c.descriptors[key] = &descriptor
}

// SortDescriptors orders descriptors in place for row emission.
func SortDescriptors(descriptors []domain.PathDescriptor) {
	sort.SliceStable(descriptors, func(i, j int) bool {
		return domain.CompareDescriptors(descriptors[i], descriptors[j]) < 0
	})
}
