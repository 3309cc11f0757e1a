package config

import (
	"fmt"
	"os"
	"strings"
)

// EnsureDBFile creates the sqlite database file when DB_URL points at a
// plain local path. Remote DSNs (libsql://, file: URIs with parameters) are
// left to the driver.
func EnsureDBFile(dsn string) error {
	if strings.Contains(dsn, "://") || strings.HasPrefix(dsn, "file:") {
		return nil
	}

	info, err := os.Stat(dsn)
	if err == nil {
		if info.IsDir() {
			return fmt.Errorf("%s exists and is a directory", dsn)
		}
		return nil // file exists and is not a directory
	}
	if !os.IsNotExist(err) {
		return err // some other error
	}

	// Create the file
	f, err := os.Create(dsn)
	if err != nil {
		return err
	}
	return f.Close()
}
