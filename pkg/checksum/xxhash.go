package checksum

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// GetFileChecksum hashes the whole content of a file. Files are recognised as
// already processed by this value.
func GetFileChecksum(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to copy file content to hasher for file %s: %w", filePath, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// CalculateHash hashes one CSV record. The unit separator keeps fields that contain
// commas from colliding with neighbouring fields.
func CalculateHash(record []string) string {
	digest := xxhash.New()
	digest.WriteString(strings.Join(record, "\x1f"))

	return hex.EncodeToString(digest.Sum(nil))
}
