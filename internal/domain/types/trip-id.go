package types

import "context"

type tripID struct{}

var tripIDKey = &tripID{}

func GetTripIDKey() *tripID {
	return tripIDKey
}

// Helper to set trip_id in context
func WithTripIDContext(ctx context.Context, tripID string) context.Context {
	return context.WithValue(ctx, GetTripIDKey(), tripID)
}
