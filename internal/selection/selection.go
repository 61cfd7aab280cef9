// Package selection filters a version's file manifest against user
// constraints. Selection is pure; it never fails, it only narrows.
package selection

import (
	"strings"

	"github.com/d2verb/civget/internal/registry"
)

// SafeFormat is the only serialization format downloaded without an
// explicit override. Compared case-insensitively.
const SafeFormat = "SafeTensor"

// Constraints narrow which manifest files are downloaded.
// Empty Size/FP match everything.
type Constraints struct {
	Size              string
	FP                string
	IncludeCompanions bool
	AllowUnsafe       bool
}

// Any reports whether any file-level constraint was requested.
func (c Constraints) Any() bool {
	return c.Size != "" || c.FP != "" || c.IncludeCompanions
}

// Verdict is the outcome of evaluating one manifest file.
type Verdict int

const (
	Included Verdict = iota
	SkippedCompanion
	SkippedUnsafe
	SkippedConstraint
)

// String returns the user-facing description of a verdict.
func (v Verdict) String() string {
	switch v {
	case Included:
		return "included"
	case SkippedCompanion:
		return "skipped (companion)"
	case SkippedUnsafe:
		return "skipped (unsafe format)"
	case SkippedConstraint:
		return "skipped (constraint mismatch)"
	default:
		return "unknown"
	}
}

// Decision pairs a manifest file with its verdict.
type Decision struct {
	File    registry.File
	Verdict Verdict
}

// IsCompanion reports whether a file is a non-primary asset (VAE, config).
func IsCompanion(f registry.File) bool {
	return f.Type == registry.FileTypeVAE || f.Type == registry.FileTypeOther
}

// Evaluate classifies every manifest file, in manifest order.
//
// Model files pass through the size/fp filter first, then the safety
// gate. The gate is a separate, later step on purpose: over-constraining
// size/fp can never suppress it, only AllowUnsafe disables it.
// Companions bypass all filters; they are included as-is when requested.
func Evaluate(files []registry.File, c Constraints) []Decision {
	decisions := make([]Decision, 0, len(files))
	for _, f := range files {
		decisions = append(decisions, Decision{File: f, Verdict: verdict(f, c)})
	}
	return decisions
}

func verdict(f registry.File, c Constraints) Verdict {
	if f.Type == registry.FileTypeModel {
		if !matchesConstraints(f, c) {
			return SkippedConstraint
		}
		if !c.AllowUnsafe && !strings.EqualFold(f.Metadata.Format, SafeFormat) {
			return SkippedUnsafe
		}
		return Included
	}

	if IsCompanion(f) && c.IncludeCompanions {
		return Included
	}
	return SkippedCompanion
}

func matchesConstraints(f registry.File, c Constraints) bool {
	if c.Size != "" && f.Metadata.Size != c.Size {
		return false
	}
	if c.FP != "" && string(f.Metadata.FP) != c.FP {
		return false
	}
	return true
}

// Select returns the files to download: included model files first,
// then included companions, each group in manifest order.
func Select(files []registry.File, c Constraints) []registry.File {
	var models, companions []registry.File
	for _, d := range Evaluate(files, c) {
		if d.Verdict != Included {
			continue
		}
		if IsCompanion(d.File) {
			companions = append(companions, d.File)
		} else {
			models = append(models, d.File)
		}
	}
	return append(models, companions...)
}
