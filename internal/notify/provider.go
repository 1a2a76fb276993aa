// Package notify delivers created alerts to external notification channels.
package notify

import (
	"context"

	"github.com/holee9/gx10-dashboard/internal/model"
)

// Provider sends alert notifications through a specific channel.
type Provider interface {
	Name() string
	Send(ctx context.Context, a model.Alert) error
}
