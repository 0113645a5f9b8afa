// Package dovi contains Dolby Vision types shared by the converter and its
// collaborators.
package dovi

import (
	"time"
)

// Mode is the RPU conversion mode applied to profile-7 sources.
type Mode int

// RPU conversion modes.
const (
	// ModeNone leaves RPUs untouched.
	ModeNone Mode = iota

	// ModeToMEL rewrites the RPU as if the enhancement layer was minimal.
	ModeToMEL

	// ModeTo81 rewrites the RPU to a profile-8.1 compatible form.
	ModeTo81
)

// ELType is the enhancement layer type of a profile-7 stream.
type ELType int

// Enhancement layer types.
const (
	ELTypeNone ELType = iota
	ELTypeFEL
	ELTypeMEL
)

// ConfigurationRecord is a Dolby Vision decoder configuration record.
type ConfigurationRecord struct {
	VersionMajor            uint8
	VersionMinor            uint8
	Profile                 uint8
	Level                   uint8
	RPUPresent              bool
	ELPresent               bool
	BLPresent               bool
	BLSignalCompatibilityID uint8
}

// FrameMetadata is the per-frame Dolby Vision metadata (level 1).
type FrameMetadata struct {
	MinPQ uint16
	MaxPQ uint16
	AvgPQ uint16
	PTS   time.Duration
}

// StreamMetadata is the per-stream Dolby Vision metadata.
type StreamMetadata struct {
	SourceMinPQ uint16
	SourceMaxPQ uint16

	HasLevel6Metadata bool
	Level6MaxLum      uint16
	Level6MinLum      uint16
	Level6MaxCLL      uint16
	Level6MaxFALL     uint16

	// human-readable metadata version label, e.g. "CMv4.0 2-1"
	MetaVersion string
}

// StreamInfo describes the Dolby Vision configuration of a stream.
type StreamInfo struct {
	ELType    ELType
	Config    ConfigurationRecord
	HasConfig bool
	HasHeader bool
}
