package validation

import (
	"fmt"
	"net"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// RoomNameRegex limits room names to URL-unreserved characters so the
	// name in config and the path segment in an ingest URL compare equal
	// without any escaping.
	RoomNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._~-]+$`)

	// StreamerIDRegex validates streamer identity format
	StreamerIDRegex = regexp.MustCompile(`^[a-zA-Z0-9._~-]+$`)
)

// ValidateRoomName validates a room name
func ValidateRoomName(room string) error {
	if room == "" {
		return fmt.Errorf("room name is required")
	}
	if len(room) > 100 {
		return fmt.Errorf("room name is too long (max 100 characters)")
	}
	if !RoomNameRegex.MatchString(room) {
		return fmt.Errorf("invalid room name %q (only letters, numbers, '.', '_', '~', '-' allowed)", room)
	}
	return nil
}

// ValidateStreamerID validates a streamer identity
func ValidateStreamerID(id string) error {
	if id == "" {
		return fmt.Errorf("streamer name is required")
	}
	if len(id) > 100 {
		return fmt.Errorf("streamer name is too long (max 100 characters)")
	}
	if !StreamerIDRegex.MatchString(id) {
		return fmt.Errorf("invalid streamer name %q", id)
	}
	return nil
}

// ValidateRoomPassword validates the password field of the join form
func ValidateRoomPassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	return ValidateStringLength(password, 1, 128, "password")
}

// ValidateExternalHost validates a host[:port] viewers connect to
func ValidateExternalHost(host string) error {
	if err := ValidateNonEmptyString(host, "external host"); err != nil {
		return err
	}
	if strings.ContainsAny(host, "/?#@ ") {
		return fmt.Errorf("external host must be host or host:port, got %q", host)
	}
	if h, _, err := net.SplitHostPort(host); err == nil && h == "" {
		return fmt.Errorf("external host %q has an empty host part", host)
	}
	return nil
}

// ValidateNonEmptyString validates that string is not empty after trimming
func ValidateNonEmptyString(s, fieldName string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateStringLength validates string length
func ValidateStringLength(s string, min, max int, fieldName string) error {
	length := utf8.RuneCountInString(s)
	if length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if length > max {
		return fmt.Errorf("%s is too long (max %d characters)", fieldName, max)
	}
	return nil
}
