package notebook

import "strings"

// ImageStore maps synthetic image names to raw bytes, keeping insertion order
// so uploads and saved files are reproducible.
type ImageStore struct {
	names []string
	data  map[string][]byte
}

// NewImageStore creates an empty store.
func NewImageStore() *ImageStore {
	return &ImageStore{data: make(map[string][]byte)}
}

// Put inserts or replaces an image. Replacing keeps the original position.
func (s *ImageStore) Put(name string, data []byte) {
	if _, ok := s.data[name]; !ok {
		s.names = append(s.names, name)
	}
	s.data[name] = data
}

// Get returns the bytes stored under name.
func (s *ImageStore) Get(name string) ([]byte, bool) {
	b, ok := s.data[name]
	return b, ok
}

// Rename moves an image to a new name in place.
func (s *ImageStore) Rename(oldName, newName string) {
	b, ok := s.data[oldName]
	if !ok || oldName == newName {
		return
	}
	delete(s.data, oldName)
	for i, n := range s.names {
		if n == oldName {
			s.names[i] = newName
		}
	}
	s.data[newName] = b
}

// Names returns image names in insertion order.
func (s *ImageStore) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of images.
func (s *ImageStore) Len() int {
	return len(s.names)
}

// Merge appends every image of other not already present.
func (s *ImageStore) Merge(other *ImageStore) {
	if other == nil {
		return
	}
	for _, n := range other.names {
		s.Put(n, other.data[n])
	}
}

// Extension returns the lowercase extension of an image name without the dot.
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}
