package model

// EmbeddingDimension is the dimension of fragment embeddings
const EmbeddingDimension = 768

// Fragment is a chunk of policy text with source metadata, the unit
// returned by similarity search.
type Fragment struct {
	Content  string `json:"content"`
	Source   string `json:"source"`
	Title    string `json:"title,omitempty"`
	Category string `json:"category,omitempty"`

	// Embedding is populated when the fragment is indexed. It is not part
	// of the cached representation.
	Embedding []float32 `json:"-"`
}

// Clone returns a deep copy of the fragment
func (f *Fragment) Clone() *Fragment {
	copied := &Fragment{
		Content:  f.Content,
		Source:   f.Source,
		Title:    f.Title,
		Category: f.Category,
	}
	if f.Embedding != nil {
		copied.Embedding = make([]float32, len(f.Embedding))
		copy(copied.Embedding, f.Embedding)
	}
	return copied
}

// IndexStats describes the state of a vector index
type IndexStats struct {
	Exists bool `json:"exists"`
	Count  int  `json:"count"`
}

// CacheStats describes the state of the cache
type CacheStats struct {
	Hits             int64 `json:"hits"`
	Misses           int64 `json:"misses"`
	VolatileEntries  int   `json:"volatile_entries"`
	DurableAvailable bool  `json:"durable_available"`
}
