package embedding

import "sort"

// Model holds the trained vectors, keyed by hierarchy node key. All vectors
// are unit length. A Model is immutable and safe for concurrent reads.
type Model struct {
	dimensions int
	vectors    map[string][]float32
}

// Dimensions returns the vector length.
func (m *Model) Dimensions() int {
	return m.dimensions
}

// Len returns the number of keys in the model.
func (m *Model) Len() int {
	return len(m.vectors)
}

// Vector returns the embedding for a node key.
func (m *Model) Vector(key string) ([]float32, bool) {
	v, ok := m.vectors[key]
	return v, ok
}

// Keys returns all node keys in sorted order.
func (m *Model) Keys() []string {
	keys := make([]string, 0, len(m.vectors))
	for k := range m.vectors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
