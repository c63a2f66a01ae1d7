// Package ornumber generates official-receipt identifiers.
//
// O.R. numbers are the unique stamp on every issued clearance. Candidates
// draw their code from ULID monotonic entropy, with a uniqueness check against
// the record store and a retry loop; the store's unique constraint is the
// final arbiter under concurrent creates.
package ornumber

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	dErrors "fiscalia/pkg/domain-errors"
)

const (
	codeLen     = 10 // length of the random part (excluding prefix and year)
	maxRetries  = 5
	base36Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// ExistsFunc reports whether an O.R. number is already taken.
type ExistsFunc func(ctx context.Context, orNumber string) (bool, error)

// Generator produces O.R. numbers like "OR-2025-01J9F2KQ3M".
type Generator struct {
	prefix string
	now    func() time.Time

	// ulid.Monotonic readers are not safe for concurrent use.
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New returns a generator stamping the given series prefix.
func New(prefix string) *Generator {
	return &Generator{
		prefix:  prefix,
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// WithClock overrides the timestamp source. Used in tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a candidate O.R. number. Candidates are unique with
// overwhelming probability but callers must still confirm against the store.
func (g *Generator) Generate() string {
	t := g.now().UTC()

	g.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(t), g.entropy)
	g.mu.Unlock()

	// A ULID string is 10 timestamp chars then 16 entropy chars. The code
	// keeps the tail of the entropy; monotonic entropy advances it on every
	// call, so candidates stay distinct within the same millisecond.
	s := id.String()
	return g.prefix + "-" + strconv.Itoa(t.Year()) + "-" + s[len(s)-codeLen:]
}

// generateRandom produces a fully random candidate, used as a fallback when
// repeated ULID candidates collide against the store.
func (g *Generator) generateRandom() string {
	result := make([]byte, codeLen)
	for i := range result {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(base36Chars))))
		result[i] = base36Chars[n.Int64()]
	}
	return g.prefix + "-" + strconv.Itoa(g.now().UTC().Year()) + "-" + string(result)
}

// GenerateUnique produces an O.R. number confirmed free against the given
// check, retrying on collision. A nil check skips confirmation (the store's
// unique constraint still guards the insert).
func (g *Generator) GenerateUnique(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		candidate := g.Generate()
		if exists == nil {
			return candidate, nil
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to check O.R. number uniqueness")
		}
		if !taken {
			return candidate, nil
		}
	}
	for attempt := 0; attempt < maxRetries; attempt++ {
		candidate := g.generateRandom()
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to check O.R. number uniqueness")
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", dErrors.New(dErrors.CodeInternal, fmt.Sprintf("could not generate a unique O.R. number after %d attempts", 2*maxRetries))
}
