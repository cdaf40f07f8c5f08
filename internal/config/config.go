// Package config resolves storage paths and wire-format settings from the
// environment.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// GetDataDir resolves the base directory for all gridvault storage. It checks
// GRIDVAULT_DIR first, then XDG paths, and finally falls back to the user's
// home directory.
func GetDataDir() string {
	if explicit := os.Getenv("GRIDVAULT_DIR"); explicit != "" {
		return explicit
	}

	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home := xdg.Home
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), "gridvault")
			}
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, "gridvault")
}

// GetDBPath returns the absolute path to the SQLite database file.
func GetDBPath() string {
	return filepath.Join(GetDataDir(), "index.db")
}

// NumberFormat holds the separator pair used when parsing numeric cells.
type NumberFormat struct {
	ThousandsSep string
	DecimalSep   string
}

// CSVFormat describes the wire format for uploads and exports.
type CSVFormat struct {
	Separator rune
	Numbers   NumberFormat
}

// GetCSVFormat reads the CSV wire-format settings from the environment,
// defaulting to tab-separated cells with "." as thousands and "," as decimal
// separator.
func GetCSVFormat() CSVFormat {
	format := CSVFormat{
		Separator: '\t',
		Numbers:   NumberFormat{ThousandsSep: ".", DecimalSep: ","},
	}

	if sep := os.Getenv("GRIDVAULT_CSV_SEP"); sep != "" {
		format.Separator = []rune(sep)[0]
	}
	if sep := os.Getenv("GRIDVAULT_THOUSANDS_SEP"); sep != "" {
		format.Numbers.ThousandsSep = sep
	}
	if sep := os.Getenv("GRIDVAULT_DECIMAL_SEP"); sep != "" {
		format.Numbers.DecimalSep = sep
	}
	return format
}
