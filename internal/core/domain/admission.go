package domain

import (
	"net/url"
	"strings"
	"time"
)

type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// ParseDirection matches the wire value case-insensitively.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(strings.ToLower(s)) {
	case DirectionIncoming:
		return DirectionIncoming, true
	case DirectionOutgoing:
		return DirectionOutgoing, true
	}
	return "", false
}

// Protocol is the transport the media server reports for the session. It is
// informational only and never takes part in a decision.
type Protocol string

const (
	ProtocolWebRTC    Protocol = "WebRTC"
	ProtocolRTMP      Protocol = "RTMP"
	ProtocolSRT       Protocol = "SRT"
	ProtocolLLHLS     Protocol = "LLHLS"
	ProtocolThumbnail Protocol = "Thumbnail"
)

var protocols = []Protocol{
	ProtocolWebRTC,
	ProtocolRTMP,
	ProtocolSRT,
	ProtocolLLHLS,
	ProtocolThumbnail,
}

// ParseProtocol matches the wire value case-insensitively and returns the
// canonical spelling.
func ParseProtocol(s string) (Protocol, bool) {
	for _, p := range protocols {
		if strings.EqualFold(string(p), s) {
			return p, true
		}
	}
	return "", false
}

type Status string

const (
	StatusOpening Status = "opening"
	StatusClosing Status = "closing"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(s)) {
	case StatusOpening:
		return StatusOpening, true
	case StatusClosing:
		return StatusClosing, true
	}
	return "", false
}

// Client describes the remote end of the session as seen by the media server.
type Client struct {
	Address   string
	Port      uint16
	UserAgent string
}

// AdmissionRequest is one parsed webhook call. A closing request may carry
// only its status; every other field is guaranteed set for opening requests.
type AdmissionRequest struct {
	Client    *Client
	Direction Direction
	Protocol  Protocol
	Status    Status
	URL       *url.URL
	NewURL    *url.URL
	Time      time.Time
}

// IsPublish reports whether the request is an ingest attempt that must pass
// the full authorization sequence.
func (r *AdmissionRequest) IsPublish() bool {
	return r.Status == StatusOpening && r.Direction == DirectionIncoming
}
