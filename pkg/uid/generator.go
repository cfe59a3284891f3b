package uid

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Generator issues UIDs from random UUIDs drawn from its own source.
// A Generator is safe for concurrent use when its source is.
type Generator struct {
	src io.Reader
}

// NewGenerator returns a Generator reading randomness from r.
// A nil r uses the default source of github.com/google/uuid.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{src: r}
}

// NextUUID draws the next v4 UUID from the generator's source.
func (g *Generator) NextUUID() (uuid.UUID, error) {
	if g == nil || g.src == nil {
		return uuid.NewRandom()
	}
	u, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to read random uuid: %w", err)
	}
	return u, nil
}

// Next returns a UID derived from a fresh UUID.
func (g *Generator) Next() (string, error) {
	u, err := g.NextUUID()
	if err != nil {
		return "", err
	}
	return Encode(u), nil
}

// NextTo writes a UID derived from a fresh UUID to w.
func (g *Generator) NextTo(w io.Writer) error {
	u, err := g.NextUUID()
	if err != nil {
		return err
	}
	return EncodeTo(w, u)
}

// Batch returns n freshly generated UIDs. n <= 0 yields nil.
func Batch(n int) []string {
	if n <= 0 {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = Generate()
	}
	return out
}

// BatchTo writes n freshly generated UIDs to w, each followed by sep.
// It stops at the first failed write.
func BatchTo(w io.Writer, n int, sep string) error {
	for i := 0; i < n; i++ {
		if err := GenerateTo(w); err != nil {
			return err
		}
		if sep == "" {
			continue
		}
		if _, err := io.WriteString(w, sep); err != nil {
			return err
		}
	}
	return nil
}
