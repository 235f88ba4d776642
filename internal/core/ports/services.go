package ports

import (
	"context"

	"ovenctrl/internal/core/domain"
)

// AdmissionService answers the media server's admission webhook.
type AdmissionService interface {
	// Admit parses a raw webhook body and decides on it. Parse failures and
	// policy denials come back as verdicts, never as errors.
	Admit(ctx context.Context, body []byte) (*domain.AdmissionRequest, domain.Verdict)
}

// JoinService checks room passwords for the viewer join page.
type JoinService interface {
	Join(ctx context.Context, room, password string) (*domain.PlayerPage, error)
}
