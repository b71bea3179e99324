package geoselect

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
)

// Navigator receives "open detail view" intents. Routing is its concern.
type Navigator interface {
	OpenStation(ctx context.Context, intent domain.NavigationIntent) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, intent domain.NavigationIntent) error

func (f NavigatorFunc) OpenStation(ctx context.Context, intent domain.NavigationIntent) error {
	return f(ctx, intent)
}

// LogNavigator records intents in the log. It stands in when no message
// broker is configured.
func LogNavigator(logger *slog.Logger) Navigator {
	return NavigatorFunc(func(_ context.Context, intent domain.NavigationIntent) error {
		logger.Info("open station detail",
			"intent_id", intent.ID,
			"station_ref", intent.Ref.String(),
			"station", intent.StationName,
			"requested_at", intent.RequestedAt,
		)
		return nil
	})
}
