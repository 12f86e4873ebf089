package importer

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/datsun80zx/jobinsights/internal/store"
)

// CalculateFileHash computes SHA-256 hash of a file
func CalculateFileHash(filepath string) (string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return "", eris.Wrap(err, "failed to open file")
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", eris.Wrap(err, "failed to hash file")
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

// CalculateFileHashes computes hashes for the jobs, receipts and timesheets files
func CalculateFileHashes(files Files) (store.FileHashes, error) {
	var hashes store.FileHashes
	var err error

	if hashes.Jobs, err = CalculateFileHash(files.Jobs); err != nil {
		return store.FileHashes{}, eris.Wrap(err, "jobs file")
	}
	if hashes.Receipts, err = CalculateFileHash(files.Receipts); err != nil {
		return store.FileHashes{}, eris.Wrap(err, "receipts file")
	}
	if hashes.Timesheets, err = CalculateFileHash(files.Timesheets); err != nil {
		return store.FileHashes{}, eris.Wrap(err, "timesheets file")
	}

	return hashes, nil
}
