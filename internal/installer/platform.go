package installer

import (
	"fmt"
	"strings"
)

// ArchiveKind distinguishes the combined toolchain archive from the extra
// standard-library archives fetched for cross targets.
type ArchiveKind int

const (
	PrimaryToolchain ArchiveKind = iota
	SupplementaryTarget
)

// ArchiveSpec names one archive required for a complete installation.
type ArchiveSpec struct {
	URL    string
	Kind   ArchiveKind
	Triple string
	Name   string // file name the archive is stored under while downloading
}

// ArchiveSet is everything Resolve decided the host needs.
type ArchiveSet struct {
	Primary       ArchiveSpec
	Supplementary []ArchiveSpec
}

// Resolve maps a platform key to the set of archives required for a complete
// installation. Android standard libraries are only pulled in on Linux hosts;
// everywhere else the supplementary list is empty.
func (c *Config) Resolve(platformKey string) (*ArchiveSet, error) {
	triple := c.Platforms[platformKey]
	if triple == "" {
		return nil, &UnsupportedPlatformError{Key: platformKey}
	}

	name := fmt.Sprintf("rust-%s-%s.tar.xz", c.Version, triple)
	set := &ArchiveSet{
		Primary: ArchiveSpec{
			URL:    fmt.Sprintf("%s/dist/%s", c.DistServer, name),
			Kind:   PrimaryToolchain,
			Triple: triple,
			Name:   name,
		},
	}

	if strings.HasPrefix(platformKey, "linux-") {
		for _, t := range c.AndroidTriples {
			stdName := fmt.Sprintf("rust-std-%s-%s.tar.xz", c.Version, t)
			set.Supplementary = append(set.Supplementary, ArchiveSpec{
				URL:    fmt.Sprintf("%s/dist/%s", c.DistServer, stdName),
				Kind:   SupplementaryTarget,
				Triple: t,
				Name:   stdName,
			})
		}
	}

	return set, nil
}
