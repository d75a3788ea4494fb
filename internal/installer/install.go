package installer

import (
	"fmt"
	"os"
	"path/filepath"
)

// Run performs a full installation for the running host: resolve the platform,
// fetch and extract every required archive in sequence, assemble the canonical
// toolchain tree, then verify the compiler executable. It is the only entry
// point; behavior is driven entirely by the host platform and environment
// overrides.
func Run() error {
	cfg, err := defaultConfig()
	if err != nil {
		return err
	}
	return cfg.Install()
}

// Install drives the pipeline with an explicit configuration. Errors from any
// step abort the run; the failing step's partial download has already been
// removed by then.
func (c *Config) Install() error {
	set, err := c.Resolve(c.PlatformKey())
	if err != nil {
		return err
	}

	colArrow.Print("-> ")
	colSuccess.Printf("Installing Rust %s for %s\n", c.Version, set.Primary.Triple)

	staging := c.StagingDir()
	os.RemoveAll(staging)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return fmt.Errorf("failed to create staging dir: %w", err)
	}

	archives := append([]ArchiveSpec{set.Primary}, set.Supplementary...)
	for _, ar := range archives {
		dest := filepath.Join(c.DownloadDir(), ar.Name)

		colArrow.Print("-> ")
		colSuccess.Printf("Fetching %s\n", ar.Name)
		progress, finish := newDownloadProgress(ar.Name)
		err := fetchFile(ar.URL, dest, progress)
		finish()
		if err != nil {
			os.Remove(dest)
			return fmt.Errorf("fetch %s: %w", ar.URL, err)
		}

		if err := extractArchive(dest, staging); err != nil {
			return err
		}
	}

	triples := make([]string, 0, len(set.Supplementary))
	for _, s := range set.Supplementary {
		triples = append(triples, s.Triple)
	}

	if err := assembleToolchain(staging, set.Primary.Triple, triples, c.InstallRoot()); err != nil {
		return fmt.Errorf("assemble toolchain: %w", err)
	}

	c.verifyPrimary()

	// Scratch trees are only needed within a run.
	os.RemoveAll(staging)
	os.RemoveAll(c.DownloadDir())

	colArrow.Print("-> ")
	colSuccess.Printf("Toolchain ready at %s\n", c.InstallRoot())
	return nil
}

// verifyPrimary marks the compiler executable 0755. Some dist archives ship it
// without the execute bit. A missing executable is a warning, not a failure:
// the archive layout legitimately varies by platform.
func (c *Config) verifyPrimary() {
	bin := filepath.Join(c.InstallRoot(), "bin", c.BinaryName)
	if _, err := os.Stat(bin); err != nil {
		colArrow.Print("-> ")
		cPrintf(colWarn, "Expected executable %s missing after assembly\n", bin)
		return
	}
	if err := os.Chmod(bin, 0o755); err != nil {
		colArrow.Print("-> ")
		cPrintf(colWarn, "Failed to mark %s executable: %v\n", bin, err)
	}
}
