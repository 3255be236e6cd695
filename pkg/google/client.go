package google

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/duewatch/pkg/auth"
	"github.com/harrisonrobin/duewatch/pkg/index"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// NewClient authorises against Google and resolves calendarName to its id.
func NewClient(ctx context.Context, flow *auth.Flow, calendarName string, idx *index.EventIndex) (*CalendarClient, error) {
	client, err := flow.Client(ctx, auth.CalendarScopes)
	if err != nil {
		return nil, err
	}
	return newClientWithOptions(ctx, calendarName, idx, option.WithHTTPClient(client))
}

func newClientWithOptions(ctx context.Context, calendarName string, idx *index.EventIndex, opts ...option.ClientOption) (*CalendarClient, error) {
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Calendar client: %w", err)
	}

	calendarList, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve calendar list: %w", err)
	}

	for _, item := range calendarList.Items {
		if item.Summary == calendarName {
			return NewCalendarClient(srv, item.Id, idx), nil
		}
	}
	return nil, fmt.Errorf("calendar '%s' not found", calendarName)
}
