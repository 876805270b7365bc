// Package pipeline reacts to invoice-row creation: it subscribes to the
// database notify channel, waits for the rendered document, and hands
// the invoice to the delivery dispatcher.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/facturehq/facture/internal/config"
	invoicedomain "github.com/facturehq/facture/internal/invoice/domain"
	"github.com/facturehq/facture/internal/observability/metrics"
	"github.com/facturehq/facture/pkg/poll"
	"github.com/lib/pq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// pingInterval bounds how long a dead connection can go unnoticed when
// no notifications arrive.
const pingInterval = 90 * time.Second

type ListenerParams struct {
	fx.In

	Log        *zap.Logger
	Config     config.Config
	Holder     *config.PipelineConfigHolder
	Store      invoicedomain.Store
	Dispatcher *Dispatcher
}

// Listener consumes new-invoice notifications and drives delivery.
// Notifications are ephemeral: a payload without a document reference
// makes the listener poll the record store until the renderer has
// attached one, then delivery proceeds from the row, never the payload.
type Listener struct {
	log        *zap.Logger
	dsn        string
	holder     *config.PipelineConfigHolder
	store      invoicedomain.Store
	dispatcher *Dispatcher
	metrics    *metrics.PipelineMetrics

	wg sync.WaitGroup
}

func NewListener(p ListenerParams) *Listener {
	return &Listener{
		log:        p.Log.Named("pipeline.listener"),
		dsn:        p.Config.DSN(),
		holder:     p.Holder,
		store:      p.Store,
		dispatcher: p.Dispatcher,
		metrics:    metrics.Pipeline(),
	}
}

// Run blocks consuming notifications until ctx is canceled. The
// underlying connection reconnects on its own with capped backoff; the
// initial LISTEN is additionally retried so a database restart during
// deploy does not kill the process.
func (l *Listener) Run(ctx context.Context) error {
	cfg := l.holder.Get()

	pqListener := pq.NewListener(l.dsn, cfg.SubscribeBackoffMin, cfg.SubscribeBackoffMax, l.onConnEvent)
	defer pqListener.Close()

	if err := l.subscribe(ctx, pqListener, cfg); err != nil {
		return err
	}
	l.log.Info("listening for invoice notifications",
		zap.String("channel", invoicedomain.NotifyChannel),
	)

	for {
		select {
		case <-ctx.Done():
			l.wg.Wait()
			return nil
		case n := <-pqListener.Notify:
			if n == nil {
				// reconnect marker: notifications sent while the
				// connection was down are gone, nothing to replay
				l.log.Warn("notification connection re-established")
				continue
			}
			payload := n.Extra
			l.wg.Add(1)
			go func() {
				defer l.wg.Done()
				l.handleNotification(ctx, payload)
			}()
		case <-time.After(pingInterval):
			if err := pqListener.Ping(); err != nil {
				l.log.Warn("notification connection ping failed", zap.Error(err))
			}
		}
	}
}

func (l *Listener) subscribe(ctx context.Context, pqListener *pq.Listener, cfg config.PipelineConfig) error {
	backoff := cfg.SubscribeBackoffMin
	var err error
	for attempt := 0; attempt <= cfg.SubscribeRetries; attempt++ {
		if err = pqListener.Listen(invoicedomain.NotifyChannel); err == nil {
			return nil
		}
		l.log.Warn("subscribe failed, retrying",
			zap.String("channel", invoicedomain.NotifyChannel),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > cfg.SubscribeBackoffMax {
			backoff = cfg.SubscribeBackoffMax
		}
	}
	return fmt.Errorf("subscribe to %s: %w", invoicedomain.NotifyChannel, err)
}

func (l *Listener) onConnEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventDisconnected, pq.ListenerEventConnectionAttemptFailed:
		l.metrics.IncListenerReconnect()
		l.log.Warn("notification connection lost", zap.Error(err))
	}
}

// handleNotification processes one notification end to end. Failures
// never propagate: a notification that cannot be decoded, or whose
// invoice never gets a document within the poll budget, is logged and
// dropped. The row itself is untouched, so an operator can re-trigger
// delivery later.
func (l *Listener) handleNotification(ctx context.Context, payload string) {
	l.metrics.IncEventReceived()

	var event invoicedomain.NewInvoiceEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		l.log.Error("dropping undecodable notification",
			zap.String("payload", payload),
			zap.Error(err),
		)
		l.metrics.IncEventDropped(metrics.DropReasonDecode)
		return
	}

	log := l.log.With(
		zap.String("invoice_id", event.ID.String()),
		zap.String("invoice_number", event.InvoiceNumber),
	)

	invoice, err := l.awaitDocument(ctx, event.ID)
	if err != nil {
		if errors.Is(err, poll.ErrTimedOut) {
			cfg := l.holder.Get()
			log.Warn("dropping notification, document never appeared",
				zap.Int("attempts", cfg.PollAttempts),
				zap.Duration("interval", cfg.PollInterval),
			)
			l.metrics.IncEventDropped(metrics.DropReasonPollTimeout)
			return
		}
		log.Error("dropping notification", zap.Error(err))
		return
	}

	if err := l.dispatcher.Deliver(ctx, invoice); err != nil {
		log.Error("invoice delivery failed", zap.Error(err))
	}
}

// awaitDocument re-reads the invoice row until the renderer has
// attached a document reference. The notification usually races the
// synchronous render patch, so the first poll typically wins; the
// remaining attempts cover a slow renderer. A row that is not visible
// yet counts as not-ready rather than an error.
func (l *Listener) awaitDocument(ctx context.Context, id snowflake.ID) (invoicedomain.Invoice, error) {
	cfg := l.holder.Get()
	return poll.Until(ctx, cfg.PollAttempts, cfg.PollInterval,
		func(ctx context.Context) (invoicedomain.Invoice, bool, error) {
			l.metrics.IncDocumentPoll()
			invoice, err := l.store.GetByID(ctx, id)
			if err != nil {
				if errors.Is(err, invoicedomain.ErrNotFound) {
					return invoicedomain.Invoice{}, false, nil
				}
				return invoicedomain.Invoice{}, false, err
			}
			return invoice, invoice.HasDocument(), nil
		})
}
