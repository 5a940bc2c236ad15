package testutil

// FixedIDGenerator returns the same identifier every time.
//
// Used wherever production code asks for a fresh UUID (e.g. the push
// transport's client id) so tests can assert on exact frames.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator. An empty id becomes "test-client".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-client"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed id.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
