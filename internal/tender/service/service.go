package service

import (
	"go.uber.org/zap"

	"github.com/johnsondatabase/tender-sub001/internal/tender/notify"
	"github.com/johnsondatabase/tender-sub001/internal/tender/repository"
	"github.com/johnsondatabase/tender-sub001/internal/tender/sse"
	"github.com/johnsondatabase/tender-sub001/internal/tender/store"
)

// Services bundles every tender service.
type Services struct {
	Listing    *ListingService
	Transition *TransitionService
	Board      *BoardService
	Grid       *GridService
	Settings   *SettingsService
}

func NewServices(repos *repository.Repositories, st *store.Store, hub *sse.Hub, notifier *notify.Notifier, kv SettingsKV, log *zap.Logger) *Services {
	return &Services{
		Listing:    NewListingService(repos, st, hub, notifier, log),
		Transition: NewTransitionService(repos, st, hub, log),
		Board:      NewBoardService(st, log),
		Grid:       NewGridService(st, log),
		Settings:   NewSettingsService(kv, log),
	}
}
