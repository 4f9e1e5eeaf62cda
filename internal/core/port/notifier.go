package port

import "context"

// Notifier delivers best-effort account emails. Implementations must
// never block the calling operation on delivery and must swallow
// failures (logging them is enough).
type Notifier interface {
	SendWelcome(ctx context.Context, email, name string)
	SendGoodbye(ctx context.Context, email, name string)
}
