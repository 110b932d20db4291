package models

import "fmt"

// MetadataStatus is the outcome of probing an image for embedded capture metadata
type MetadataStatus int

const (
	// MetadataAbsent means the container was read and carries no capture metadata
	MetadataAbsent MetadataStatus = iota
	// MetadataPresent means a readable capture metadata block was found
	MetadataPresent
	// MetadataUnreadable means the container or its metadata block could not be parsed
	MetadataUnreadable
)

func (s MetadataStatus) String() string {
	switch s {
	case MetadataAbsent:
		return "absent"
	case MetadataPresent:
		return "present"
	case MetadataUnreadable:
		return "unreadable"
	default:
		return fmt.Sprintf("MetadataStatus(%d)", int(s))
	}
}

// MarshalText encodes the status as its lowercase name
func (s MetadataStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name
func (s *MetadataStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "absent":
		*s = MetadataAbsent
	case "present":
		*s = MetadataPresent
	case "unreadable":
		*s = MetadataUnreadable
	default:
		return fmt.Errorf("unknown metadata status %q", text)
	}
	return nil
}
