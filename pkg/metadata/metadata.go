// Package metadata computes and verifies checksums of written output files.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Checksum verification errors.
var (
	ErrNoChecksumFound = errors.New("no checksum found")
	ErrHashMismatch    = errors.New("hash mismatch")
)

// CalculateHash computes the hex SHA-256 of everything read from r.
func CalculateHash(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFile computes the hex SHA-256 of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return CalculateHash(f)
}

// Sign writes a sha256sum-compatible sidecar ("<hash>  <name>") for path to
// sidecar and returns the hash.
func Sign(path, sidecar string) (string, error) {
	hash, err := HashFile(path)
	if err != nil {
		return "", err
	}

	line := fmt.Sprintf("%s  %s\n", hash, filepath.Base(path))
	if err := os.WriteFile(sidecar, []byte(line), 0644); err != nil {
		return "", fmt.Errorf("failed to write checksum file: %w", err)
	}

	return hash, nil
}

// Extract reads the hash from a sidecar file.
func Extract(sidecar string) (string, error) {
	data, err := os.ReadFile(sidecar)
	if err != nil {
		return "", fmt.Errorf("failed to read checksum file: %w", err)
	}

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoChecksumFound, sidecar)
	}

	return fields[0], nil
}

// Verify checks that path still matches the hash recorded in sidecar.
func Verify(path, sidecar string) (bool, error) {
	expected, err := Extract(sidecar)
	if err != nil {
		return false, err
	}

	calculated, err := HashFile(path)
	if err != nil {
		return false, err
	}

	if calculated != expected {
		return false, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, expected, calculated)
	}

	return true, nil
}
