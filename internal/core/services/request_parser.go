package services

import (
	"encoding/json"
	"net/url"
	"time"

	"ovenctrl/internal/core/domain"
)

type admissionPayload struct {
	Client  json.RawMessage            `json:"client"`
	Request map[string]json.RawMessage `json:"request"`
}

type clientPayload struct {
	Address        string `json:"address"`
	Port           uint16 `json:"port"`
	UserAgent      string `json:"user_agent"`
	UserAgentCamel string `json:"userAgent"`
}

// Accepted spellings of the ISO-8601 timestamp sent by the media server.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05Z0700",
}

func malformed(format string, args ...interface{}) *domain.DenialError {
	return domain.Deny(domain.ErrMalformedRequest, "malformed admission request: "+format, args...)
}

// ParseAdmission turns a webhook body into an AdmissionRequest. Once the
// status decodes as closing nothing else is validated, so a stream close is
// acknowledged even when the rest of the payload is unusable.
func ParseAdmission(body []byte) (*domain.AdmissionRequest, error) {
	var payload admissionPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, malformed("%v", err)
	}
	if payload.Request == nil {
		return nil, malformed("missing field `request`")
	}

	rawStatus, err := requiredString(payload.Request, "status")
	if err != nil {
		return nil, err
	}
	status, ok := domain.ParseStatus(rawStatus)
	if !ok {
		return nil, malformed("unknown status %q", rawStatus)
	}

	req := &domain.AdmissionRequest{Status: status}
	client, clientErr := parseClient(payload.Client)
	if status == domain.StatusClosing {
		if clientErr == nil {
			req.Client = client
		}
		return req, nil
	}
	if clientErr != nil {
		return nil, clientErr
	}
	req.Client = client

	rawDirection, err := requiredString(payload.Request, "direction")
	if err != nil {
		return nil, err
	}
	if req.Direction, ok = domain.ParseDirection(rawDirection); !ok {
		return nil, malformed("unknown direction %q", rawDirection)
	}

	rawProtocol, err := requiredString(payload.Request, "protocol")
	if err != nil {
		return nil, err
	}
	if req.Protocol, ok = domain.ParseProtocol(rawProtocol); !ok {
		return nil, malformed("unknown protocol %q", rawProtocol)
	}

	rawURL, err := requiredString(payload.Request, "url")
	if err != nil {
		return nil, err
	}
	if req.URL, err = parseAbsoluteURL("url", rawURL); err != nil {
		return nil, err
	}

	for _, field := range []string{"new_url", "newUrl"} {
		raw, present, err := optionalString(payload.Request, field)
		if err != nil {
			return nil, err
		}
		if !present {
			continue
		}
		if req.NewURL, err = parseAbsoluteURL(field, raw); err != nil {
			return nil, err
		}
		break
	}

	rawTime, err := requiredString(payload.Request, "time")
	if err != nil {
		return nil, err
	}
	if req.Time, err = parseTimestamp(rawTime); err != nil {
		return nil, err
	}

	return req, nil
}

func parseClient(raw json.RawMessage) (*domain.Client, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var c clientPayload
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, malformed("field `client`: %v", err)
	}
	client := &domain.Client{Address: c.Address, Port: c.Port, UserAgent: c.UserAgent}
	if client.UserAgent == "" {
		client.UserAgent = c.UserAgentCamel
	}
	return client, nil
}

func optionalString(fields map[string]json.RawMessage, name string) (string, bool, error) {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false, malformed("field `%s` must be a string", name)
	}
	return s, true, nil
}

func requiredString(fields map[string]json.RawMessage, name string) (string, error) {
	s, ok, err := optionalString(fields, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", malformed("missing field `%s`", name)
	}
	return s, nil
}

func parseAbsoluteURL(field, raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, malformed("field `%s`: %v", field, err)
	}
	if u.Scheme == "" {
		return nil, malformed("field `%s`: relative URL without a base", field)
	}
	return u, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, malformed("field `time`: %q is not an ISO-8601 timestamp", raw)
}

