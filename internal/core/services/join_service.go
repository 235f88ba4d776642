package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/url"

	"ovenctrl/internal/core/domain"
	"ovenctrl/internal/core/ports"
)

type joinService struct {
	rooms        *domain.RoomDirectory
	externalHost string
	externalTLS  bool
}

func NewJoinService(rooms *domain.RoomDirectory, externalHost string, externalTLS bool) ports.JoinService {
	return &joinService{
		rooms:        rooms,
		externalHost: externalHost,
		externalTLS:  externalTLS,
	}
}

func (s *joinService) Join(ctx context.Context, room, password string) (*domain.PlayerPage, error) {
	expected, ok := s.rooms.LookupPassword(domain.RoomName(room))
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(password)) != 1 {
		return nil, domain.ErrWrongRoomPassword
	}

	return &domain.PlayerPage{
		Room:      domain.RoomName(room),
		SourceURL: s.playbackURL(room, password),
	}, nil
}

// playbackURL points the player at the media server's WebRTC signalling
// endpoint for the room.
func (s *joinService) playbackURL(room, password string) string {
	scheme := "ws"
	if s.externalTLS {
		scheme = "wss"
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     s.externalHost,
		Path:     fmt.Sprintf("/app/%s", room),
		RawQuery: url.Values{"password": []string{password}}.Encode(),
	}
	return u.String()
}
