package services

import (
	"context"
	"crypto/subtle"
	"net/url"
	"strconv"
	"strings"

	"ovenctrl/internal/core/domain"
	"ovenctrl/internal/core/ports"
	"ovenctrl/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
)

type admissionService struct {
	table *domain.AuthorizationTable
}

func NewAdmissionService(table *domain.AuthorizationTable) ports.AdmissionService {
	return &admissionService{
		table: table,
	}
}

func (s *admissionService) Admit(ctx context.Context, body []byte) (*domain.AdmissionRequest, domain.Verdict) {
	ctx, span := tracing.TraceAdmission(ctx)
	defer span.End()

	req, err := ParseAdmission(body)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, domain.DenyVerdict(err)
	}

	verdict := Decide(s.table, req)

	tracing.AddSpanAttributes(ctx,
		tracing.StatusKey.String(string(req.Status)),
		tracing.DirectionKey.String(string(req.Direction)),
		tracing.ProtocolKey.String(string(req.Protocol)),
		tracing.AllowedKey.Bool(verdict.Allowed),
		attribute.String("admission.denial", domain.DenialLabel(verdict.Cause)),
	)
	if req.IsPublish() && req.URL != nil {
		if room, err := roomFromURL(req.URL); err == nil {
			tracing.AddSpanAttributes(ctx, tracing.RoomKey.String(string(room)))
		}
	}

	return req, verdict
}

// Decide is the admission decision engine. It is a pure function of the
// table and the request and is safe to call from any number of goroutines.
// Anything but the explicit success path ends in a denial.
func Decide(table *domain.AuthorizationTable, req *domain.AdmissionRequest) domain.Verdict {
	if req == nil {
		return domain.DenyVerdict(malformed("empty request"))
	}

	switch req.Status {
	case domain.StatusClosing:
		return domain.ClosingVerdict()
	case domain.StatusOpening:
	default:
		return domain.DenyVerdict(malformed("unknown status %q", req.Status))
	}

	switch req.Direction {
	case domain.DirectionOutgoing:
		// Playback sessions are not gated here.
		return domain.AllowVerdict()
	case domain.DirectionIncoming:
	default:
		return domain.DenyVerdict(malformed("unknown direction %q", req.Direction))
	}

	if err := admitPublisher(table, req.URL); err != nil {
		return domain.DenyVerdict(err)
	}
	return domain.AllowVerdict()
}

type ingestCredentials struct {
	Name domain.StreamerID
	Key  string
}

func admitPublisher(table *domain.AuthorizationTable, u *url.URL) error {
	if u == nil {
		return malformed("missing field `url`")
	}

	creds, err := parseIngestQuery(u)
	if err != nil {
		return err
	}
	if err := authenticate(table, creds); err != nil {
		return err
	}

	room, err := roomFromURL(u)
	if err != nil {
		return err
	}
	return authorizeRoom(table, creds.Name, room)
}

// parseIngestQuery reads name=<streamer>&key=<secret> from the ingest URL.
func parseIngestQuery(u *url.URL) (ingestCredentials, error) {
	if u.RawQuery == "" && !u.ForceQuery {
		return ingestCredentials{}, malformed("no query parameters present")
	}

	values := parseFormQuery(u.RawQuery)

	name, err := singleQueryValue(values, "name")
	if err != nil {
		return ingestCredentials{}, err
	}
	key, err := singleQueryValue(values, "key")
	if err != nil {
		return ingestCredentials{}, err
	}

	return ingestCredentials{Name: domain.StreamerID(name), Key: key}, nil
}

// parseFormQuery splits a form-encoded query on '&' only. Unlike
// url.ParseQuery it keeps ';' as an ordinary character and never fails:
// malformed escapes stay literal text.
func parseFormQuery(raw string) url.Values {
	values := make(url.Values)
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key := decodeFormComponent(k)
		values[key] = append(values[key], decodeFormComponent(v))
	}
	return values
}

func decodeFormComponent(s string) string {
	if decoded, err := url.QueryUnescape(s); err == nil {
		return strings.ToValidUTF8(decoded, "\uFFFD")
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s):
			if n, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(n))
				i += 2
				continue
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return strings.ToValidUTF8(b.String(), "\uFFFD")
}

func singleQueryValue(values url.Values, field string) (string, error) {
	switch v := values[field]; len(v) {
	case 0:
		return "", malformed("missing query field `%s`", field)
	case 1:
		return v[0], nil
	default:
		return "", malformed("duplicate query field `%s`", field)
	}
}

// authenticate proves the presented key belongs to the streamer.
func authenticate(table *domain.AuthorizationTable, creds ingestCredentials) error {
	expected, ok := table.LookupSecret(creds.Name)
	if !ok {
		return domain.Deny(domain.ErrUnknownStreamer, "unknown streamer: %s", creds.Name)
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(creds.Key)) != 1 {
		return domain.Deny(domain.ErrInvalidKey, "invalid key for streamer %s", creds.Name)
	}
	return nil
}

// roomFromURL returns the second path segment, e.g. roomA in
// rtmp://host/app/roomA. Segments are compared in their escaped form.
func roomFromURL(u *url.URL) (domain.RoomName, error) {
	path := u.EscapedPath()
	if !strings.HasPrefix(path, "/") {
		return "", domain.Deny(domain.ErrMissingRoomSegment, "url '%s' has no path segments", redactURL(u))
	}

	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(segments) < 2 {
		return "", domain.Deny(domain.ErrMissingRoomSegment, "url '%s' is missing a second path segment", redactURL(u))
	}
	return domain.RoomName(segments[1]), nil
}

// authorizeRoom checks the room against the streamer's grants.
func authorizeRoom(table *domain.AuthorizationTable, streamer domain.StreamerID, room domain.RoomName) error {
	rooms, ok := table.LookupAllowedRooms(streamer)
	if !ok || len(rooms) == 0 {
		return domain.Deny(domain.ErrNoRoomGrants, "streamer '%s' does not have access to any rooms", streamer)
	}
	if !table.RoomGranted(streamer, room) {
		return domain.Deny(domain.ErrRoomNotGranted, "room %s not granted to streamer %s", room, streamer)
	}
	return nil
}

// redactURL drops the query so the key never ends up in a reason string.
func redactURL(u *url.URL) string {
	clean := *u
	clean.RawQuery = ""
	clean.ForceQuery = false
	clean.Fragment = ""
	clean.RawFragment = ""
	clean.User = nil
	return clean.String()
}
