package contract

import "context"

// Counter names tracked for relayed chat turns.
const (
	CounterRelayed     = "relayed"
	CounterFailed      = "failed"
	CounterAttachments = "attachments"
)

type UsageRepository interface {
	Increment(ctx context.Context, counter string, delta int64) error
	Get(ctx context.Context, counter string) (int64, error)
}
