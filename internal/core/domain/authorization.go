package domain

// StreamerID identifies a publisher in the authorization table.
type StreamerID string

// RoomName is the second path segment of an ingest URL.
type RoomName string

// StreamerCredential binds a streamer identity to its secret key.
type StreamerCredential struct {
	ID     StreamerID
	Secret string
}

// RoomGrant lists the rooms one streamer may publish into.
type RoomGrant struct {
	StreamerID StreamerID
	Rooms      map[RoomName]struct{}
}

// AuthorizationTable is built once at startup and never mutated afterwards,
// so a single instance can be shared by every request goroutine.
type AuthorizationTable struct {
	secrets map[StreamerID]string
	grants  map[StreamerID]map[RoomName]struct{}
}

// NewAuthorizationTable copies its inputs. Later changes to the caller's
// slices or maps do not leak into the table.
func NewAuthorizationTable(credentials []StreamerCredential, grants []RoomGrant) *AuthorizationTable {
	t := &AuthorizationTable{
		secrets: make(map[StreamerID]string, len(credentials)),
		grants:  make(map[StreamerID]map[RoomName]struct{}, len(grants)),
	}

	for _, c := range credentials {
		t.secrets[c.ID] = c.Secret
	}

	for _, g := range grants {
		rooms, ok := t.grants[g.StreamerID]
		if !ok {
			rooms = make(map[RoomName]struct{}, len(g.Rooms))
			t.grants[g.StreamerID] = rooms
		}
		for room := range g.Rooms {
			rooms[room] = struct{}{}
		}
	}

	return t
}

// NewAuthorizationTableFromMaps is the shape configuration files use.
func NewAuthorizationTableFromMaps(streamers map[string]string, allowed map[string][]string) *AuthorizationTable {
	credentials := make([]StreamerCredential, 0, len(streamers))
	for id, secret := range streamers {
		credentials = append(credentials, StreamerCredential{ID: StreamerID(id), Secret: secret})
	}

	grants := make([]RoomGrant, 0, len(allowed))
	for id, rooms := range allowed {
		g := RoomGrant{StreamerID: StreamerID(id), Rooms: make(map[RoomName]struct{}, len(rooms))}
		for _, room := range rooms {
			g.Rooms[RoomName(room)] = struct{}{}
		}
		grants = append(grants, g)
	}

	return NewAuthorizationTable(credentials, grants)
}

// LookupSecret returns the stored secret for a streamer.
func (t *AuthorizationTable) LookupSecret(id StreamerID) (string, bool) {
	if t == nil {
		return "", false
	}
	secret, ok := t.secrets[id]
	return secret, ok
}

// LookupAllowedRooms returns the room set granted to a streamer. A missing
// entry (false) is distinct from a present but empty set. The returned map
// is shared with the table and must not be modified.
func (t *AuthorizationTable) LookupAllowedRooms(id StreamerID) (map[RoomName]struct{}, bool) {
	if t == nil {
		return nil, false
	}
	rooms, ok := t.grants[id]
	return rooms, ok
}

func (t *AuthorizationTable) RoomGranted(id StreamerID, room RoomName) bool {
	rooms, ok := t.LookupAllowedRooms(id)
	if !ok {
		return false
	}
	_, granted := rooms[room]
	return granted
}

func (t *AuthorizationTable) StreamerCount() int {
	if t == nil {
		return 0
	}
	return len(t.secrets)
}
