package typesync

import (
	stderrors "errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/jeffijoe/typesync/pkg/errors"
)

// ErrNoVersions is returned by [ClosestMatchingVersion] for an empty list.
var ErrNoVersions = stderrors.New("no versions available")

// VersionParseError reports a version or range that could not be read as
// semver after stripping range operators.
type VersionParseError struct {
	Version string
}

func (e *VersionParseError) Error() string {
	return fmt.Sprintf("could not parse version '%s'", e.Version)
}

// Unwrap lets errors.Is(err, errors.ErrCodeInvalidVersion) match.
func (e *VersionParseError) Unwrap() error {
	return errors.New(errors.ErrCodeInvalidVersion, "could not parse version '%s'", e.Version)
}

// ClosestMatchingVersion returns the first record in versions (newest first)
// whose major.minor equals that of target. Patch and prerelease are ignored.
// When nothing matches, the newest record is returned.
func ClosestMatchingVersion(versions []VersionRecord, target string) (VersionRecord, error) {
	if len(versions) == 0 {
		return VersionRecord{}, ErrNoVersions
	}

	want, ok := parseVersion(target)
	if !ok {
		return VersionRecord{}, &VersionParseError{Version: target}
	}
	line := semver.MajorMinor(want)

	for _, v := range versions {
		got, ok := parseVersion(v.Version)
		if !ok {
			continue
		}
		if semver.MajorMinor(got) == line {
			return v, nil
		}
	}
	return versions[0], nil
}

// cleanVersion strips leading range operators and whitespace ("^", "~",
// "=") and a "v" prefix.
func cleanVersion(v string) string {
	v = strings.TrimLeft(v, "^~= \t")
	return strings.TrimPrefix(v, "v")
}

// parseVersion returns v in the "vX.Y.Z" form expected by x/mod/semver.
func parseVersion(v string) (string, bool) {
	c := cleanVersion(v)
	if c == "" {
		return "", false
	}
	c = "v" + c
	if !semver.IsValid(c) {
		return "", false
	}
	return c, true
}

// compareVersions orders two registry version strings; invalid versions sort
// below valid ones.
func compareVersions(a, b string) int {
	pa, _ := parseVersion(a)
	pb, _ := parseVersion(b)
	return semver.Compare(pa, pb)
}

// SortVersions orders records newest first. Unparseable versions go last.
func SortVersions(versions []VersionRecord) {
	slices.SortStableFunc(versions, func(a, b VersionRecord) int {
		return compareVersions(b.Version, a.Version)
	})
}
