package usage

import "context"

type UsageRepository interface {
	// Get returns the count for (userID, day); a missing row reads as 0.
	Get(ctx context.Context, userID, day string) (int, error)
	// Increment atomically adds one and returns the new count.
	Increment(ctx context.Context, userID, day string) (int, error)
}
