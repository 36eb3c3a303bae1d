package api

import (
	"fleetlog-backend/internal/mailer"
	"fleetlog-backend/internal/store"

	"github.com/SherClockHolmes/webpush-go"
)

// Dispatcher queues an approval push for a maintenance record. The
// notification worker pool satisfies it; tests use a recorder.
type Dispatcher interface {
	Dispatch(maintenanceID string)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	webpush   *webpush.Options
	mailer    mailer.Sender
	approvals Dispatcher
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, webpushOptions *webpush.Options, mail mailer.Sender, approvals Dispatcher) *Handler {
	return &Handler{
		store:     s,
		webpush:   webpushOptions,
		mailer:    mail,
		approvals: approvals,
	}
}
