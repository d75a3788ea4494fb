package installer

import (
	"fmt"
	"os"
	"path/filepath"
)

// assembleToolchain merges the extracted component trees under stagingRoot
// into a single canonical layout and swaps it into place at installRoot.
//
// stagingRoot is expected to hold the component directories the archives
// produce: "rustc" (compiler binaries and runtime libraries), "cargo"
// (package-manager binaries) and one "rust-std-<triple>" per installed
// target. A missing component is warned about and skipped; the run still
// counts as a success.
//
// The tree is built next to installRoot and moved in with a single rename, so
// the visible install directory never holds a mix of two runs.
func assembleToolchain(stagingRoot, hostTriple string, supplementaryTriples []string, installRoot string) error {
	partial := installRoot + ".partial"
	os.RemoveAll(partial)

	binDir := filepath.Join(partial, "bin")
	libDir := filepath.Join(partial, "lib")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("failed to create bin dir: %w", err)
	}
	if err := os.MkdirAll(libDir, 0o755); err != nil {
		return fmt.Errorf("failed to create lib dir: %w", err)
	}

	merged := 0
	copyComponent := func(what, src, dst string) error {
		if _, err := os.Stat(src); err != nil {
			colArrow.Print("-> ")
			cPrintf(colWarn, "Skipping %s: %s not present in staging\n", what, src)
			return nil
		}
		if err := copyDir(src, dst); err != nil {
			return fmt.Errorf("failed to copy %s: %w", what, err)
		}
		merged++
		return nil
	}

	rustc := filepath.Join(stagingRoot, "rustc")
	if err := copyComponent("compiler binaries", filepath.Join(rustc, "bin"), binDir); err != nil {
		return err
	}
	if err := copyComponent("compiler libraries", filepath.Join(rustc, "lib"), libDir); err != nil {
		return err
	}

	cargo := filepath.Join(stagingRoot, "cargo", "bin")
	if err := copyComponent("cargo binaries", cargo, binDir); err != nil {
		return err
	}

	hostStd := filepath.Join(stagingRoot, "rust-std-"+hostTriple, "lib", "rustlib")
	if err := copyComponent("host standard library", hostStd, filepath.Join(libDir, "rustlib")); err != nil {
		return err
	}

	for _, triple := range supplementaryTriples {
		src := filepath.Join(stagingRoot, "rust-std-"+triple, "lib", "rustlib", triple)
		dst := filepath.Join(libDir, "rustlib", triple)
		if err := copyComponent("standard library for "+triple, src, dst); err != nil {
			return err
		}
	}

	if err := writeManifest(partial); err != nil {
		return fmt.Errorf("failed to write install manifest: %w", err)
	}

	// Replace the visible install directory in one move.
	if err := os.RemoveAll(installRoot); err != nil {
		return fmt.Errorf("failed to remove previous install: %w", err)
	}
	if err := os.Rename(partial, installRoot); err != nil {
		return fmt.Errorf("failed to move assembled toolchain into place: %w", err)
	}

	colArrow.Print("-> ")
	colSuccess.Printf("Assembled %d component trees into %s\n", merged, installRoot)
	return nil
}
