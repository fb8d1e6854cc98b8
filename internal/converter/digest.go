package converter

import (
	"encoding/hex"
	"fmt"
	"io"

	"media-converter/internal/filesystem"
	"media-converter/internal/logging"

	"golang.org/x/crypto/blake2b"
)

// Digest returns the hex BLAKE2b-256 digest of the file at path.
func Digest(path string, retry filesystem.RetryConfig) (string, error) {
	f, err := filesystem.OpenWithRetry(path, retry)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close %s: %v", path, err)
		}
	}()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
