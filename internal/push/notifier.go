package push

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/stgabriel/parishhub/internal/model"
	"github.com/stgabriel/parishhub/internal/store"
)

// Notifier fans out portal events to subscribed staff devices. Delivery is
// best-effort: failures are logged and expired subscriptions pruned, nothing
// is retried.
type Notifier struct {
	service *Service
	subs    *store.PushStore
	logger  *slog.Logger
}

func NewNotifier(service *Service, subs *store.PushStore, logger *slog.Logger) *Notifier {
	return &Notifier{service: service, subs: subs, logger: logger}
}

// NotifyNewSubmission alerts admin devices that a new request arrived.
func (n *Notifier) NotifyNewSubmission(req *model.Request, typeLabel string) {
	subs, err := n.subs.ListAdmins()
	if err != nil {
		n.logger.Error("list admin subscriptions", "error", err)
		return
	}

	n.sendAll(subs, Payload{
		Title: fmt.Sprintf("New %s request", typeLabel),
		Body:  fmt.Sprintf("%s submitted %q", req.SubmitterName, req.Title),
		URL:   "/admin/requests/" + req.ID,
		Tag:   model.NotifTypeNewSubmission,
	})
}

// NotifyTasksGenerated tells a user how many tasks this morning's generator
// run created for them.
func (n *Notifier) NotifyTasksGenerated(userEmail string, count int) {
	if count == 0 {
		return
	}

	subs, err := n.subs.ListByUser(userEmail)
	if err != nil {
		n.logger.Error("list user subscriptions", "email", userEmail, "error", err)
		return
	}

	body := fmt.Sprintf("%d recurring tasks are on your list today", count)
	if count == 1 {
		body = "1 recurring task is on your list today"
	}

	n.sendAll(subs, Payload{
		Title: "Today's tasks are ready",
		Body:  body,
		URL:   "/tasks",
		Tag:   model.NotifTypeTasksGenerated,
	})
}

func (n *Notifier) sendAll(subs []model.PushSubscription, payload Payload) {
	for i := range subs {
		sub := subs[i]
		if err := n.service.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				n.subs.DeleteByEndpoint(sub.Endpoint)
			} else {
				n.logger.Warn("send push", "endpoint", sub.Endpoint, "error", err)
			}
		}
	}
}
