// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package vke

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a major.minor.patch application version.
type Version struct {
	Major, Minor, Patch uint32
}

// String returns the version as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Packed encodes the version in 32 bits: 10 bits major, 10 bits minor and
// 12 bits patch. Components that overflow their field are truncated.
func (v Version) Packed() uint32 {
	return (v.Major&0x3ff)<<22 | (v.Minor&0x3ff)<<12 | v.Patch&0xfff
}

// UnpackVersion is the inverse of Version.Packed.
func UnpackVersion(p uint32) Version {
	return Version{Major: p >> 22, Minor: p >> 12 & 0x3ff, Patch: p & 0xfff}
}

// ParseVersion parses "major.minor.patch". A leading "v" is accepted, and
// missing minor or patch components are zero.
func ParseVersion(s string) (Version, error) {
	t := strings.TrimPrefix(strings.TrimSpace(s), "v")
	parts := strings.Split(t, ".")
	if t == "" || len(parts) > 3 {
		return Version{}, fmt.Errorf("vke: invalid version %q", s)
	}
	var out [3]uint32
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return Version{}, fmt.Errorf("vke: invalid version %q: %w", s, err)
		}
		out[i] = uint32(n)
	}
	return Version{Major: out[0], Minor: out[1], Patch: out[2]}, nil
}
