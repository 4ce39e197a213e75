package embeddings

import "errors"

// ErrNoEmbedding is returned when a backend answers without any vectors.
var ErrNoEmbedding = errors.New("embedding backend returned no vectors")
