package builder

import (
	"crypto/sha256"
	"fmt"
	"os"

	"github.com/dshills/cppbind/pkg/types"
)

// HashModule computes the module's content hash: SHA-256 over the
// concatenation of every linked source file's content, in link order,
// followed by the descriptor text. Any byte change in any input yields
// a different hash.
func HashModule(m *types.Module) ([32]byte, error) {
	h := sha256.New()
	for _, src := range m.Sources {
		content, err := os.ReadFile(src)
		if err != nil {
			return [32]byte{}, fmt.Errorf("module %s: failed to read source %s: %w", m.Name, src, err)
		}
		h.Write(content)
	}
	if m.Descriptor != nil {
		h.Write([]byte(m.Descriptor.Text))
	}

	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
