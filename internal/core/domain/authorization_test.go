package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizationTable_Lookups(t *testing.T) {
	table := NewAuthorizationTable(
		[]StreamerCredential{{ID: "alice", Secret: "k1"}, {ID: "carol", Secret: "k3"}},
		[]RoomGrant{
			{StreamerID: "alice", Rooms: map[RoomName]struct{}{"roomA": {}, "roomB": {}}},
			{StreamerID: "carol", Rooms: map[RoomName]struct{}{}},
		},
	)

	secret, ok := table.LookupSecret("alice")
	assert.True(t, ok)
	assert.Equal(t, "k1", secret)

	_, ok = table.LookupSecret("bob")
	assert.False(t, ok)

	rooms, ok := table.LookupAllowedRooms("alice")
	require.True(t, ok)
	assert.Len(t, rooms, 2)

	// present but empty is not the same as absent
	rooms, ok = table.LookupAllowedRooms("carol")
	assert.True(t, ok)
	assert.Empty(t, rooms)

	_, ok = table.LookupAllowedRooms("bob")
	assert.False(t, ok)

	assert.True(t, table.RoomGranted("alice", "roomB"))
	assert.False(t, table.RoomGranted("alice", "roomC"))
	assert.False(t, table.RoomGranted("bob", "roomA"))
	assert.Equal(t, 2, table.StreamerCount())
}

func TestAuthorizationTable_CopiesInputs(t *testing.T) {
	streamers := map[string]string{"alice": "k1"}
	allowed := map[string][]string{"alice": {"roomA"}}
	table := NewAuthorizationTableFromMaps(streamers, allowed)

	streamers["alice"] = "changed"
	streamers["bob"] = "k2"
	allowed["alice"][0] = "roomZ"

	secret, _ := table.LookupSecret("alice")
	assert.Equal(t, "k1", secret)
	_, ok := table.LookupSecret("bob")
	assert.False(t, ok)
	assert.True(t, table.RoomGranted("alice", "roomA"))
	assert.False(t, table.RoomGranted("alice", "roomZ"))
}

func TestAuthorizationTable_MergesGrantsForSameStreamer(t *testing.T) {
	table := NewAuthorizationTable(nil, []RoomGrant{
		{StreamerID: "alice", Rooms: map[RoomName]struct{}{"roomA": {}}},
		{StreamerID: "alice", Rooms: map[RoomName]struct{}{"roomB": {}}},
	})

	assert.True(t, table.RoomGranted("alice", "roomA"))
	assert.True(t, table.RoomGranted("alice", "roomB"))
}

func TestAuthorizationTable_NilIsEmpty(t *testing.T) {
	var table *AuthorizationTable

	_, ok := table.LookupSecret("alice")
	assert.False(t, ok)
	_, ok = table.LookupAllowedRooms("alice")
	assert.False(t, ok)
	assert.Zero(t, table.StreamerCount())
}

func TestRoomDirectory(t *testing.T) {
	dir := NewRoomDirectory(map[string]string{"lobby": "pw"})

	password, ok := dir.LookupPassword("lobby")
	assert.True(t, ok)
	assert.Equal(t, "pw", password)
	_, ok = dir.LookupPassword("attic")
	assert.False(t, ok)
	assert.Equal(t, 1, dir.Len())

	var empty *RoomDirectory
	assert.Zero(t, empty.Len())
}

func TestDenialError(t *testing.T) {
	err := Deny(ErrUnknownStreamer, "unknown streamer: %s", "bob")

	assert.Equal(t, "unknown streamer: bob", err.Error())
	assert.True(t, errors.Is(err, ErrUnknownStreamer))
	assert.False(t, errors.Is(err, ErrInvalidKey))

	var denial *DenialError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &denial))
	assert.Equal(t, ErrUnknownStreamer, denial.Kind)
}

func TestDenialLabel(t *testing.T) {
	tests := map[error]string{
		nil:                                   "none",
		Deny(ErrMalformedRequest, "x"):        "malformed_request",
		Deny(ErrUnknownStreamer, "x"):         "unknown_streamer",
		Deny(ErrInvalidKey, "x"):              "invalid_key",
		Deny(ErrMissingRoomSegment, "x"):      "missing_room_segment",
		Deny(ErrNoRoomGrants, "x"):            "no_room_grants",
		Deny(ErrRoomNotGranted, "x"):          "room_not_granted",
		errors.New("something else entirely"): "other",
	}

	for err, want := range tests {
		assert.Equal(t, want, DenialLabel(err))
	}
}

func TestParseEnums(t *testing.T) {
	d, ok := ParseDirection("Incoming")
	assert.True(t, ok)
	assert.Equal(t, DirectionIncoming, d)
	_, ok = ParseDirection("inbound")
	assert.False(t, ok)

	p, ok := ParseProtocol("srt")
	assert.True(t, ok)
	assert.Equal(t, ProtocolSRT, p)
	p, ok = ParseProtocol("thumbnail")
	assert.True(t, ok)
	assert.Equal(t, ProtocolThumbnail, p)
	_, ok = ParseProtocol("HLS")
	assert.False(t, ok)

	s, ok := ParseStatus("CLOSING")
	assert.True(t, ok)
	assert.Equal(t, StatusClosing, s)
	_, ok = ParseStatus("")
	assert.False(t, ok)
}
