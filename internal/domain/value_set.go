package domain

import "sort"

// ValueSet holds distinct normalized values observed at one path.
type ValueSet struct {
	values map[string]Value
}

// NewValueSet creates an empty set.
func NewValueSet() *ValueSet {
	return &ValueSet{values: map[string]Value{}}
}

// Add inserts v and reports whether it was not already present.
func (s *ValueSet) Add(v Value) bool {
	key := v.Key()
	if _, exists := s.values[key]; exists {
		return false
	}
	s.values[key] = v
	return true
}

// Contains reports whether a value equal to v is in the set.
func (s *ValueSet) Contains(v Value) bool {
	if s == nil {
		return false
	}
	_, exists := s.values[v.Key()]
	return exists
}

// Len returns the number of distinct values.
func (s *ValueSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// Sorted returns the values in their total order.
func (s *ValueSet) Sorted() []Value {
	if s == nil {
		return []Value{}
	}
	out := make([]Value, 0, len(s.values))
	for _, v := range s.values {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return Compare(out[i], out[j]) < 0
	})
	return out
}
