package epub

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"scout/config"
)

// packageID returns book unique identifier (without "urn:uuid:" prefix).
func packageID(scheme config.IDScheme, seed string, now time.Time) (string, error) {
	if scheme == config.IDSchemeUuid {
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("unable to generate book identifier: %w", err)
		}
		return id.String(), nil
	}
	return pseudoUUID(seed, now), nil
}

// pseudoUUID derives identifier shaped as version 4 UUID from FNV-1a hash of
// seed mixed with timestamp. Same seed and time always give same result.
func pseudoUUID(seed string, now time.Time) string {
	const (
		fnvPrime = 0x100000001b3
		golden   = 0x9e3779b97f4a7c15
	)

	hash := fnv.New64a()
	hash.Write([]byte(seed))
	h := hash.Sum64()
	h ^= uint64(now.UnixMilli())
	h *= fnvPrime

	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		uint32(h>>32),
		uint16(h>>16),
		0x4000|uint16(h>>4)&0x0fff,
		0x8000|uint16(h>>2)&0x3fff,
		(h*golden)&0xffffffffffff,
	)
}
