package family

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// Allocator hands out person ids. Next must return an id not present in s at call time;
// randomized allocators may collide in theory, so the engine re-checks and retries.
type Allocator interface {
	Next(s *Store, hint Fields) (ID, error)
}

// SequentialAllocator returns Prefix + (max numeric suffix + 1).
// Deterministic, used by the merge path and by tests.
type SequentialAllocator struct {
	Prefix string
}

func (a SequentialAllocator) Next(s *Store, _ Fields) (ID, error) {
	prefix := a.Prefix
	if prefix == "" {
		prefix = "p"
	}
	return ID(prefix + strconv.Itoa(MaxNumericSuffix(s.people)+1)), nil
}

// RandomAllocator builds opaque ids from a time component, a random component and a
// content hash of the new person's fields, followed by a random UUID.
type RandomAllocator struct {
	Now func() time.Time
}

func (a RandomAllocator) Next(_ *Store, hint Fields) (ID, error) {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	var salt [8]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return "", fmt.Errorf("failed to read random salt: %w", err)
	}

	h, err := blake2b.New(8, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create id hash: %w", err)
	}
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(now().UnixNano()))
	h.Write(ts[:])
	h.Write(salt[:])
	h.Write([]byte(hint.Name + string(hint.Gender) + hint.Dates))

	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate uuid: %w", err)
	}
	return ID("p" + hex.EncodeToString(h.Sum(nil)) + "-" + u.String()), nil
}

// NewAllocator maps a configured strategy name to an Allocator.
func NewAllocator(strategy string) (Allocator, error) {
	switch strategy {
	case "", "sequential":
		return SequentialAllocator{Prefix: "p"}, nil
	case "random":
		return RandomAllocator{}, nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q", strategy)
	}
}
