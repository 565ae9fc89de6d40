// Package notifier sends the customer and manager SMS for store events.
package notifier

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/iyunix/go-smsassistent/internal/domain"
	"github.com/iyunix/go-smsassistent/internal/logger"
	"github.com/iyunix/go-smsassistent/internal/repository/sentmessage"
	"github.com/iyunix/go-smsassistent/internal/services/settings"
	"github.com/iyunix/go-smsassistent/internal/services/sms"
	"github.com/iyunix/go-smsassistent/internal/services/template"
)

// statusBatchSize caps the ids sent in one status request.
const statusBatchSize = 100

// Settings is the part of the settings service the workflows read.
type Settings interface {
	General(ctx context.Context) (domain.GeneralOptions, error)
	ClientConfig(ctx context.Context) (*sms.Config, domain.GeneralOptions, error)
	StatusOptions(ctx context.Context, status string) (domain.NotificationOptions, error)
	CustomerOptions(ctx context.Context) (domain.NotificationOptions, error)
}

// ProviderFactory builds a gateway client for the current settings.
type ProviderFactory func(cfg *sms.Config) (sms.Provider, error)

// Outcome reports what a workflow did. Skipped is set when nothing was sent.
type Outcome struct {
	BatchID  string                `json:"batch_id,omitempty"`
	Skipped  string                `json:"skipped,omitempty"`
	Messages []*domain.SentMessage `json:"messages"`
}

type Notifier struct {
	settings  Settings
	messages  sentmessage.SentMessageRepository
	providers ProviderFactory
	store     template.Store
	logger    logger.Logger
}

func New(s Settings, messages sentmessage.SentMessageRepository, providers ProviderFactory, store template.Store, log logger.Logger) *Notifier {
	return &Notifier{
		settings:  s,
		messages:  messages,
		providers: providers,
		store:     store,
		logger:    log,
	}
}

// ClientFactory returns a ProviderFactory backed by the real gateway client.
func ClientFactory(log logger.Logger) ProviderFactory {
	return func(cfg *sms.Config) (sms.Provider, error) {
		return sms.NewClient(cfg, log)
	}
}

// notification is one event ready to be rendered and sent.
type notification struct {
	event    domain.Event
	entityID string
	status   string
	phone    string
	render   func(tpl string) string
}

// CustomerCreated notifies the new customer and the managers.
func (n *Notifier) CustomerCreated(ctx context.Context, ev domain.CustomerEvent) (*Outcome, error) {
	n.logger.Info("customer registration received", "customer_id", ev.ID)

	data := template.CustomerDataFromEvent(n.store, ev)
	return n.run(ctx, notification{
		event:    domain.EventCustomerCreated,
		entityID: strconv.FormatInt(ev.ID, 10),
		phone:    data.Telephone,
		render:   func(tpl string) string { return template.RenderCustomer(tpl, data) },
	}, n.settings.CustomerOptions)
}

// OrderStatusChanged notifies the customer and the managers about an order
// that moved from one status to another.
func (n *Notifier) OrderStatusChanged(ctx context.Context, ev domain.OrderEvent, from, to string) (*Outcome, error) {
	n.logger.Info("order status change received", "order_id", ev.ID, "from", from, "to", to)

	status, err := settings.NormalizeStatus(to)
	if err != nil {
		return nil, err
	}
	data := template.OrderDataFromEvent(n.store, ev)
	return n.run(ctx, notification{
		event:    domain.EventOrderStatusChanged,
		entityID: strconv.FormatInt(ev.ID, 10),
		status:   status,
		phone:    data.Telephone,
		render:   func(tpl string) string { return template.RenderOrder(tpl, data) },
	}, func(ctx context.Context) (domain.NotificationOptions, error) {
		return n.settings.StatusOptions(ctx, status)
	})
}

func (n *Notifier) run(ctx context.Context, note notification, load func(context.Context) (domain.NotificationOptions, error)) (*Outcome, error) {
	general, err := n.settings.General(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load general settings: %w", err)
	}
	if !general.Active {
		n.logger.Info("notifications are disabled globally", "event", note.event)
		return &Outcome{Skipped: "notifications disabled"}, nil
	}

	opts, err := load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification settings: %w", err)
	}
	if !opts.CustomerActive && !opts.ManagerActive {
		n.logger.Info("no notifications enabled for event", "event", note.event, "status", note.status)
		return &Outcome{Skipped: "no notifications enabled"}, nil
	}

	provider, general, err := n.provider(ctx)
	if err != nil {
		return nil, err
	}

	out := &Outcome{BatchID: uuid.NewString()}

	if opts.CustomerActive {
		if note.phone == "" {
			n.logger.Info("customer has no phone, message not sent", "event", note.event, "entity_id", note.entityID)
		} else {
			msg := sms.Message{Sender: general.Sender, Recipients: []string{note.phone}, Text: note.render(opts.CustomerTemplate)}
			out.Messages = append(out.Messages, n.send(ctx, provider, out.BatchID, note, domain.AudienceCustomer, msg)...)
		}
	} else {
		n.logger.Debug("customer message disabled", "event", note.event, "status", note.status)
	}

	if opts.ManagerActive {
		phones := settings.SplitPhones(opts.ManagerPhones)
		if len(phones) == 0 {
			n.logger.Info("no manager phones configured", "event", note.event, "status", note.status)
		} else {
			msg := sms.Message{Sender: general.Sender, Recipients: phones, Text: note.render(opts.ManagerTemplate)}
			out.Messages = append(out.Messages, n.send(ctx, provider, out.BatchID, note, domain.AudienceManager, msg)...)
		}
	} else {
		n.logger.Debug("manager message disabled", "event", note.event, "status", note.status)
	}

	if len(out.Messages) == 0 {
		out.Skipped = "no recipients"
	}
	return out, nil
}

// SendTest sends text to phone regardless of the global switch. It backs the
// admin test message endpoint.
func (n *Notifier) SendTest(ctx context.Context, phone, text string) (*Outcome, error) {
	provider, general, err := n.provider(ctx)
	if err != nil {
		return nil, err
	}
	out := &Outcome{BatchID: uuid.NewString()}
	note := notification{event: domain.EventTestMessage}
	msg := sms.Message{Sender: general.Sender, Recipients: []string{phone}, Text: text}
	out.Messages = n.send(ctx, provider, out.BatchID, note, domain.AudienceAdmin, msg)
	return out, nil
}

func (n *Notifier) provider(ctx context.Context) (sms.Provider, domain.GeneralOptions, error) {
	cfg, general, err := n.settings.ClientConfig(ctx)
	if err != nil {
		n.logger.Error("gateway is not configured", "error", err)
		return nil, general, err
	}
	provider, err := n.providers(cfg)
	if err != nil {
		return nil, general, fmt.Errorf("failed to create gateway client: %w", err)
	}
	return provider, general, nil
}

// send performs one gateway call and stores its rows in the send log. A
// failing log write is logged and does not hide the send outcome.
func (n *Notifier) send(ctx context.Context, provider sms.Provider, batchID string, note notification, audience domain.Audience, msg sms.Message) []*domain.SentMessage {
	n.logger.Info("sending notification", "event", note.event, "audience", audience, "recipients", len(msg.Recipients))

	res := provider.SendSMS(ctx, msg)
	rows := rowsFromResult(batchID, note, audience, msg, res)

	if res.Error {
		n.logger.Error("notification failed", "event", note.event, "audience", audience, "errors", res.ErrorMessages)
	} else {
		failed := lo.CountBy(rows, func(m *domain.SentMessage) bool { return m.State == domain.MessageStateFailed })
		n.logger.Info("notification sent", "event", note.event, "audience", audience, "records", len(rows), "failed", failed)
	}
	n.logger.Debug("gateway result", "wire", res.Type, "result", res.Result)

	if err := n.messages.CreateInBatch(ctx, rows); err != nil {
		n.logger.Error("failed to write send log", "batch_id", batchID, "error", err)
	}
	return rows
}

func rowsFromResult(batchID string, note notification, audience domain.Audience, msg sms.Message, res sms.Result[[]sms.SendRecord]) []*domain.SentMessage {
	base := domain.SentMessage{
		BatchID:  batchID,
		Event:    note.event,
		EntityID: note.entityID,
		Status:   note.status,
		Audience: audience,
		Text:     msg.Text,
		Wire:     res.Type,
	}

	if res.Error {
		row := base
		row.Phone = strings.Join(msg.Recipients, ";")
		row.State = domain.MessageStateFailed
		row.Error = strings.Join(res.ErrorMessages, "; ")
		if len(res.Codes) > 0 {
			row.ErrorCode = res.Codes[0]
		}
		return []*domain.SentMessage{&row}
	}

	return lo.Map(res.Result, func(rec sms.SendRecord, i int) *domain.SentMessage {
		row := base
		row.Phone = rec.Phone
		if row.Phone == "" && i < len(msg.Recipients) {
			row.Phone = msg.Recipients[i]
		}
		row.SMSCode = rec.SMSCode
		row.SMSCount = rec.SMSCount
		if rec.SMSError {
			row.State = domain.MessageStateFailed
			row.ErrorCode = rec.SMSErrorCode
			row.Error = rec.SMSErrorMsg
		} else {
			row.State = domain.MessageStatePending
		}
		return &row
	})
}

// RefreshStatuses asks the gateway for the delivery status of up to limit
// pending log rows and stores what comes back. It returns the number of rows
// updated.
func (n *Notifier) RefreshStatuses(ctx context.Context, limit int) (int, error) {
	pending, err := n.messages.FindPending(ctx, limit)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	provider, _, err := n.provider(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, chunk := range lo.Chunk(pending, statusBatchSize) {
		ids := lo.Uniq(lo.Map(chunk, func(m domain.SentMessage, _ int) int { return m.SMSCode }))
		res := provider.GetSMSStatus(ctx, ids)
		if res.Error {
			n.logger.Error("status refresh failed", "ids", len(ids), "errors", res.ErrorMessages)
			return updated, res.Err()
		}

		statuses := lo.SliceToMap(res.Result, func(r sms.StatusRecord) (int, string) { return r.SMSCode, r.Status })
		for i := range chunk {
			row := &chunk[i]
			status, ok := statuses[row.SMSCode]
			if !ok || status == row.GatewayStatus {
				continue
			}
			row.ApplyGatewayStatus(status)
			if err := n.messages.Update(ctx, row); err != nil {
				return updated, err
			}
			updated++
		}
	}

	n.logger.Info("delivery statuses refreshed", "pending", len(pending), "updated", updated)
	return updated, nil
}
