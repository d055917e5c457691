package helpers

import "context"

// StoredLocation resolves a Telegram user ID to a persisted location record
// via a service that implements LocationByUserID. The generic type T allows
// different projects to supply their own location model.
func StoredLocation[T any](
	ctx context.Context,
	service interface {
		LocationByUserID(context.Context, int64) (T, error)
	},
	tgID int64,
) (T, error) {
	var zero T
	if service == nil {
		return zero, nil
	}
	return service.LocationByUserID(ctx, tgID)
}
