package engine

import (
	crand "crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// Bounds of a one-time confirmation code, inclusive.
const (
	MinCode = 1000
	MaxCode = 9999
)

// CodeGenerator issues one-time confirmation codes.
type CodeGenerator interface {
	Generate() (int, error)
}

// RandomCodes draws codes uniformly from [MinCode, MaxCode] using crypto/rand.
//
// Thread-safety: RandomCodes is stateless and safe for concurrent use.
type RandomCodes struct{}

// Generate implements CodeGenerator.
func (RandomCodes) Generate() (int, error) {
	n, err := crand.Int(crand.Reader, big.NewInt(MaxCode-MinCode+1))
	if err != nil {
		return 0, fmt.Errorf("read random code: %w", err)
	}
	return MinCode + int(n.Int64()), nil
}

// TurnIDGenerator names turns for logs and the turn log.
type TurnIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 turn ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so turn ids sort
// by creation time in the turn log.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
