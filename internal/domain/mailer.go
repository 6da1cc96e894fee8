package domain

import "context"

// Mailer sends pre-rendered HTML mail and returns the provider message id.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) (string, error)
}
