package installer

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	toolchainVersion  = "1.89.0"
	defaultDistServer = "https://static.rust-lang.org"
	primaryBinary     = "rustc"
)

// supportedPlatforms is the closed set of hosts we know how to install for.
// Keys are "<GOOS>-<GOARCH>", values are Rust target triples.
var supportedPlatforms = map[string]string{
	"darwin-amd64": "x86_64-apple-darwin",
	"darwin-arm64": "aarch64-apple-darwin",
	"linux-amd64":  "x86_64-unknown-linux-gnu",
	"linux-arm64":  "aarch64-unknown-linux-gnu",
}

// androidTriples are the cross-compilation standard libraries fetched in
// addition to the host's own, on Linux hosts only.
var androidTriples = []string{
	"arm-linux-androideabi",
	"aarch64-linux-android",
	"i686-linux-android",
	"x86_64-linux-android",
}

// Config carries everything the installer needs to know at runtime. The
// version, dist server and platform table are plain data rather than
// package-level constants so tests can point the resolver at a throwaway
// server and platform set.
type Config struct {
	Version        string
	DistServer     string // base URL without trailing slash
	BinaryName     string // primary executable expected under bin/
	Platforms      map[string]string
	AndroidTriples []string
	BaseDir        string // parent of the install root and the scratch dirs
	OS             string
	Arch           string
}

func defaultConfig() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Version:        toolchainVersion,
		DistServer:     defaultDistServer,
		BinaryName:     primaryBinary,
		Platforms:      supportedPlatforms,
		AndroidTriples: androidTriples,
		BaseDir:        cwd,
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
	}
	mergeEnvOverrides(cfg)
	return cfg, nil
}

// mergeEnvOverrides applies environment overrides onto the defaults.
// RUSTUP_DIST_SERVER follows the convention the wider Rust tooling uses for
// pointing installs at a mirror.
func mergeEnvOverrides(cfg *Config) {
	if mirror := os.Getenv("RUSTUP_DIST_SERVER"); mirror != "" {
		cfg.DistServer = strings.TrimRight(mirror, "/")
		debugf("=> Using dist server override: %s\n", cfg.DistServer)
	}
	if root := os.Getenv("RUSTC_NPM_ROOT"); root != "" {
		cfg.BaseDir = root
	}
	if os.Getenv("RUSTC_NPM_DEBUG") == "1" {
		Debug = true
	}
}

// PlatformKey identifies the running host within the supported set.
func (c *Config) PlatformKey() string {
	return c.OS + "-" + c.Arch
}

// InstallRoot is the externally visible toolchain directory.
func (c *Config) InstallRoot() string {
	return filepath.Join(c.BaseDir, "rust")
}

// DownloadDir holds fetched archives during a run.
func (c *Config) DownloadDir() string {
	return filepath.Join(c.BaseDir, "downloads")
}

// StagingDir holds extracted archive trees during a run.
func (c *Config) StagingDir() string {
	return filepath.Join(c.BaseDir, "staging")
}
