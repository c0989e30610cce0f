package binding

import "errors"

// Mutator derives the next model from the current one. Returning an error
// aborts the commit.
type Mutator[M any] func(M) (M, error)

// Cell holds the single authoritative model value and its version.
//
// Cell is NOT safe for concurrent use. Commits must come from one logical
// thread at a time.
type Cell[M any] struct {
	model   M
	version uint64
}

// NewCell creates a cell at version 0.
func NewCell[M any](initial M) *Cell[M] {
	return &Cell[M]{model: initial}
}

// Read returns the current model.
func (c *Cell[M]) Read() M {
	return c.model
}

// Version returns the number of successful commits.
func (c *Cell[M]) Version() uint64 {
	return c.version
}

// Commit applies mut to the current model. On success the result replaces the
// model and the version advances by one. On error the model and version are
// left as they were.
func (c *Cell[M]) Commit(mut Mutator[M]) (uint64, error) {
	if mut == nil {
		return c.version, errors.New("binding: nil mutator")
	}
	next, err := mut(c.model)
	if err != nil {
		return c.version, err
	}
	c.model = next
	c.version++
	return c.version, nil
}
