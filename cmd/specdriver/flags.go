package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func validateSpecPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("specification file is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve specification path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("specification file does not exist: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("specification path %s is a directory", abs)
	}

	return nil
}
