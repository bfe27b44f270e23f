// Package cache provides the fingerprint-keyed result cache that wraps
// the analysis pipeline. Identical archive bytes never recompute.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Fingerprint returns a deterministic hex digest of the archive's byte
// content. Filenames and modification times do not participate for
// single-file archives; for directory archives the relative file paths
// are mixed in so that renames of member files change the key.
func Fingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("fingerprinting archive: %w", err)
	}

	h := sha256.New()
	if info.IsDir() {
		if err := hashDir(h, path); err != nil {
			return "", fmt.Errorf("fingerprinting archive: %w", err)
		}
	} else {
		if err := hashFile(h, path); err != nil {
			return "", fmt.Errorf("fingerprinting archive: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FingerprintBytes returns the digest of an in-memory archive blob.
func FingerprintBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hashFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// hashDir hashes every regular file under dir in sorted relative-path
// order, writing each path before its content.
func hashDir(w io.Writer, dir string) error {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, path := range files {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, strings.ReplaceAll(rel, "\\", "/")); err != nil {
			return err
		}
		if _, err := w.Write([]byte{0}); err != nil {
			return err
		}
		if err := hashFile(w, path); err != nil {
			return err
		}
	}
	return nil
}
