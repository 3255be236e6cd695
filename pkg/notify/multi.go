package notify

import (
	"context"

	"github.com/harrisonrobin/duewatch/pkg/model"
)

// Presenter surfaces one batch of newly overdue tasks.
type Presenter interface {
	Present(ctx context.Context, batch []model.Task)
}

// Multi hands every batch to each presenter in order.
type Multi []Presenter

func (m Multi) Present(ctx context.Context, batch []model.Task) {
	for _, p := range m {
		p.Present(ctx, batch)
	}
}
