package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RandomName returns a unique name with the given prefix, suitable for
// resources that carry a uniqueness constraint.
func RandomName(prefix string) string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(b))
}
