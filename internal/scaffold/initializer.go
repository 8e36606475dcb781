package scaffold

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dyluth/canvas/internal/config"
	"github.com/dyluth/canvas/internal/printer"
)

//go:embed templates/*
var templatesFS embed.FS

// Template returns the default canvas.yml written by Initialize.
func Template() ([]byte, error) {
	content, err := templatesFS.ReadFile("templates/canvas.yml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read canvas.yml template: %w", err)
	}
	return content, nil
}

// Initialize writes the default canvas.yml to path.
// If force is true an existing file is replaced; otherwise an existing file
// is an error (see CheckExisting).
func Initialize(path string, force bool) error {
	if force {
		if err := handleForce(path); err != nil {
			return err
		}
	} else if err := CheckExisting(path); err != nil {
		return err
	}

	content, err := Template()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	// Validate through the same loader every command uses
	if _, err := config.Load(path); err != nil {
		return fmt.Errorf("created %s is not a valid configuration: %w", path, err)
	}

	return nil
}

// handleForce removes an existing config if --force was specified
func handleForce(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	printer.Warning("Removing existing %s...\n", path)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// PrintSuccess prints the success message and next steps
func PrintSuccess(w io.Writer, path string) {
	fmt.Fprintf(w, "\n✅ Created %s\n", path)
	fmt.Fprintln(w, "\nNext steps:")
	fmt.Fprintln(w, "  1. Set canvas.owner to the identity recorded at genesis")
	fmt.Fprintln(w, "  2. Run 'canvas up' to start Redis and initialize the canvas")
	fmt.Fprintln(w, "  3. Run 'canvas buy 0 0 --color \"#FF0000\" --as alice' to buy a pixel")
}
