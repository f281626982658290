package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates dir if it does not exist and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("error while resolving %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o750); err != nil {
		return "", fmt.Errorf("error while creating tftp base dir: %w", err)
	}

	return abs, nil
}

func UserHomeDirPath() string {
	p, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("error while getting user home dir: %w", err))
	}

	return filepath.Join(p, "tftp")
}
