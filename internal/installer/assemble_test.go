package installer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const hostTriple = "x86_64-unknown-linux-gnu"

func writeTestFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatal(err)
	}
}

// newStagingTree lays out what the extractor produces for the combined
// toolchain archive: rustc, cargo and the host standard library.
func newStagingTree(t *testing.T) string {
	t.Helper()
	staging := t.TempDir()
	writeTestFile(t, filepath.Join(staging, "rustc", "bin", "rustc"), "compiler", 0o644)
	writeTestFile(t, filepath.Join(staging, "rustc", "lib", "librustc_driver.so"), "driver", 0o644)
	writeTestFile(t, filepath.Join(staging, "cargo", "bin", "cargo"), "cargo", 0o755)
	writeTestFile(t, filepath.Join(staging, "rust-std-"+hostTriple,
		"lib", "rustlib", hostTriple, "lib", "libstd.rlib"), "std", 0o644)
	return staging
}

func addSupplementaryStd(t *testing.T, staging, triple string) {
	t.Helper()
	writeTestFile(t, filepath.Join(staging, "rust-std-"+triple,
		"lib", "rustlib", triple, "lib", "libstd.rlib"), "std-"+triple, 0o644)
}

func rustlibTripleDirs(t *testing.T, installRoot string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(installRoot, "lib", "rustlib"))
	if err != nil {
		t.Fatal(err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs
}

func TestAssemblePrimaryOnly(t *testing.T) {
	staging := newStagingTree(t)
	installRoot := filepath.Join(t.TempDir(), "rust")

	if err := assembleToolchain(staging, hostTriple, nil, installRoot); err != nil {
		t.Fatalf("assembleToolchain: %v", err)
	}

	for _, rel := range []string{
		filepath.Join("bin", "rustc"),
		filepath.Join("bin", "cargo"),
		filepath.Join("lib", "librustc_driver.so"),
		filepath.Join("lib", "rustlib", hostTriple, "lib", "libstd.rlib"),
	} {
		if _, err := os.Stat(filepath.Join(installRoot, rel)); err != nil {
			t.Errorf("missing %s after assembly: %v", rel, err)
		}
	}

	dirs := rustlibTripleDirs(t, installRoot)
	if len(dirs) != 1 || dirs[0] != hostTriple {
		t.Errorf("lib/rustlib triples = %v, want [%s]", dirs, hostTriple)
	}
}

func TestAssembleSupplementaryAdditive(t *testing.T) {
	staging := newStagingTree(t)
	supp := []string{"arm-linux-androideabi", "aarch64-linux-android"}
	for _, triple := range supp {
		addSupplementaryStd(t, staging, triple)
	}
	installRoot := filepath.Join(t.TempDir(), "rust")

	if err := assembleToolchain(staging, hostTriple, supp, installRoot); err != nil {
		t.Fatalf("assembleToolchain: %v", err)
	}

	dirs := rustlibTripleDirs(t, installRoot)
	if len(dirs) != len(supp)+1 {
		t.Fatalf("lib/rustlib has %d triple dirs (%v), want %d", len(dirs), dirs, len(supp)+1)
	}
	for _, triple := range append([]string{hostTriple}, supp...) {
		if _, err := os.Stat(filepath.Join(installRoot, "lib", "rustlib", triple)); err != nil {
			t.Errorf("triple %s missing: %v", triple, err)
		}
	}
}

func TestAssembleReplacesPreviousInstall(t *testing.T) {
	staging := newStagingTree(t)
	installRoot := filepath.Join(t.TempDir(), "rust")

	// Simulate leftovers from an earlier run with a different target set.
	writeTestFile(t, filepath.Join(installRoot, "bin", "old-tool"), "old", 0o755)
	writeTestFile(t, filepath.Join(installRoot, "lib", "rustlib", "stale-triple", "x"), "old", 0o644)

	if err := assembleToolchain(staging, hostTriple, nil, installRoot); err != nil {
		t.Fatalf("assembleToolchain: %v", err)
	}

	if _, err := os.Stat(filepath.Join(installRoot, "bin", "old-tool")); !os.IsNotExist(err) {
		t.Error("stale binary survived the replace")
	}
	if _, err := os.Stat(filepath.Join(installRoot, "lib", "rustlib", "stale-triple")); !os.IsNotExist(err) {
		t.Error("stale target triple survived the replace")
	}
}

func TestAssembleMissingComponentSkipped(t *testing.T) {
	staging := newStagingTree(t)
	if err := os.RemoveAll(filepath.Join(staging, "cargo")); err != nil {
		t.Fatal(err)
	}
	installRoot := filepath.Join(t.TempDir(), "rust")

	if err := assembleToolchain(staging, hostTriple, nil, installRoot); err != nil {
		t.Fatalf("assembleToolchain with missing cargo: %v", err)
	}
	if _, err := os.Stat(filepath.Join(installRoot, "bin", "rustc")); err != nil {
		t.Errorf("rustc missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(installRoot, "bin", "cargo")); !os.IsNotExist(err) {
		t.Error("cargo appeared despite missing staging tree")
	}
}

func TestAssembleBinaryCollisionLastWriteWins(t *testing.T) {
	staging := newStagingTree(t)
	writeTestFile(t, filepath.Join(staging, "rustc", "bin", "shared-tool"), "from-rustc", 0o755)
	writeTestFile(t, filepath.Join(staging, "cargo", "bin", "shared-tool"), "from-cargo", 0o755)
	installRoot := filepath.Join(t.TempDir(), "rust")

	if err := assembleToolchain(staging, hostTriple, nil, installRoot); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(installRoot, "bin", "shared-tool"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "from-cargo" {
		t.Errorf("collision resolved to %q, want the cargo copy", got)
	}
}

func TestAssembleManifestDeterministic(t *testing.T) {
	staging := newStagingTree(t)

	rootA := filepath.Join(t.TempDir(), "rust")
	rootB := filepath.Join(t.TempDir(), "rust")
	if err := assembleToolchain(staging, hostTriple, nil, rootA); err != nil {
		t.Fatal(err)
	}
	if err := assembleToolchain(staging, hostTriple, nil, rootB); err != nil {
		t.Fatal(err)
	}

	a, err := os.ReadFile(filepath.Join(rootA, "lib", "rustlib", "manifest"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(rootB, "lib", "rustlib", "manifest"))
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("manifests differ between identical assemblies")
	}

	var checksummed bool
	for _, line := range strings.Split(string(a), "\n") {
		if strings.HasPrefix(line, "/bin/rustc  ") {
			sum := strings.TrimPrefix(line, "/bin/rustc  ")
			if len(sum) != 64 {
				t.Errorf("checksum %q is not a 32-byte hex digest", sum)
			}
			checksummed = true
		}
	}
	if !checksummed {
		t.Error("manifest has no checksum entry for /bin/rustc")
	}
}
