package domain

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrWrongRoomPassword = errors.New("wrong room password")
)

// RoomDirectory maps viewer rooms to their join passwords. Like the
// authorization table it is fixed at startup.
type RoomDirectory struct {
	passwords map[RoomName]string
}

func NewRoomDirectory(rooms map[string]string) *RoomDirectory {
	d := &RoomDirectory{passwords: make(map[RoomName]string, len(rooms))}
	for room, password := range rooms {
		d.passwords[RoomName(room)] = password
	}
	return d
}

func (d *RoomDirectory) LookupPassword(room RoomName) (string, bool) {
	if d == nil {
		return "", false
	}
	password, ok := d.passwords[room]
	return password, ok
}

func (d *RoomDirectory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.passwords)
}

// PlayerPage is what the join page renders once a viewer is let in.
type PlayerPage struct {
	Room      RoomName
	SourceURL string
}
