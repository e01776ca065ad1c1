package dedupe

// Ordered is an insertion-ordered map: a sequence of unique keys plus a
// key -> value lookup. The first value stored under a key wins.
type Ordered[V any] struct {
	keys  []string
	items map[string]V
}

// NewOrdered creates an empty map sized for capacity entries.
func NewOrdered[V any](capacity int) *Ordered[V] {
	if capacity < 0 {
		capacity = 0
	}
	return &Ordered[V]{
		keys:  make([]string, 0, capacity),
		items: make(map[string]V, capacity),
	}
}

// IsSeen returns true when key has already been stored.
func (o *Ordered[V]) IsSeen(key string) bool {
	_, ok := o.items[key]
	return ok
}

// Add stores v under key unless the key is already present.
// It reports whether v was stored.
func (o *Ordered[V]) Add(key string, v V) bool {
	if o.IsSeen(key) {
		return false
	}
	o.items[key] = v
	o.keys = append(o.keys, key)
	return true
}

// Len returns the number of unique keys.
func (o *Ordered[V]) Len() int {
	return len(o.keys)
}

// Values returns at most limit values in insertion order; limit <= 0 means all.
func (o *Ordered[V]) Values(limit int) []V {
	n := len(o.keys)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]V, 0, n)
	for _, k := range o.keys[:n] {
		out = append(out, o.items[k])
	}
	return out
}
