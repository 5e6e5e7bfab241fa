package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	xhttp "MarketPulse/pkg/http"

	"github.com/google/uuid"
)

// PollTransport emulates the push transport over authenticated HTTP polling.
// Subscribe/unsubscribe are handled locally (ids assigned synchronously) and
// confirmed by synthesizing the same inbound envelopes the WebSocket provider
// would send, so the stream client runs unchanged on either transport.
type PollTransport struct {
	baseURL  string
	apiKey   string
	interval time.Duration
	client   *xhttp.Client

	mu       sync.Mutex
	open     bool
	inflight bool
	watch    map[models.DataType]map[string]struct{} // type -> symbol set
	msgCh    chan []byte
	errCh    chan error
	cancel   context.CancelFunc
}

// NewPollTransport creates a polling transport against the provider REST API.
func NewPollTransport(baseURL, apiKey string, interval time.Duration, client *xhttp.Client) *PollTransport {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &PollTransport{
		baseURL:  baseURL,
		apiKey:   apiKey,
		interval: interval,
		client:   client,
		watch:    make(map[models.DataType]map[string]struct{}),
	}
}

// Open starts the poll loop. The watch set survives reopen, matching the
// subscription-reissue behavior of the push transport.
func (t *PollTransport) Open(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.open {
		return nil
	}
	t.open = true
	t.msgCh = make(chan []byte, 1024)
	t.errCh = make(chan error, 1)

	loopCtx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	go t.pollLoop(loopCtx, t.msgCh)
	return nil
}

// Send handles an outbound envelope locally.
func (t *PollTransport) Send(ctx context.Context, env *models.Envelope) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return models.ErrNotConnected
	}

	switch env.Type {
	case models.MsgSubscribe:
		id := env.SubscriptionID
		if id == "" {
			id = uuid.NewString()
		}
		set, ok := t.watch[env.DataType]
		if !ok {
			set = make(map[string]struct{})
			t.watch[env.DataType] = set
		}
		for _, s := range env.Symbols {
			set[s] = struct{}{}
		}
		t.synthesize(&models.Envelope{
			Type:           models.MsgSubscribed,
			SubscriptionID: id,
			RequestID:      env.RequestID,
			Symbols:        env.Symbols,
			DataType:       env.DataType,
			Frequency:      env.Frequency,
		})
	case models.MsgUnsubscribe:
		// The client prunes its registry on the confirm; the watch set is
		// rebuilt from the registry on the next tick via SetWatch.
		t.synthesize(&models.Envelope{
			Type:           models.MsgUnsubscribed,
			SubscriptionID: env.SubscriptionID,
			RequestID:      env.RequestID,
		})
	case models.MsgPing:
		t.synthesize(&models.Envelope{Type: models.MsgPong})
	case models.MsgGetFeeds:
		t.synthesize(&models.Envelope{
			Type:  models.MsgFeeds,
			Feeds: []string{"quote", "trade", "bar", "news"},
		})
	case models.MsgListSubscriptions:
		// Local registry is authoritative in polling mode; nothing to reconcile.
	default:
		return fmt.Errorf("poll transport: unsupported outbound %q", env.Type)
	}
	return nil
}

// SetWatch replaces the polled symbol sets, typically derived from the
// registry after an unsubscribe.
func (t *PollTransport) SetWatch(byType map[models.DataType][]string) {
	next := make(map[models.DataType]map[string]struct{}, len(byType))
	for dt, syms := range byType {
		set := make(map[string]struct{}, len(syms))
		for _, s := range syms {
			set[s] = struct{}{}
		}
		next[dt] = set
	}
	t.mu.Lock()
	t.watch = next
	t.mu.Unlock()
}

// Messages yields synthesized and polled inbound frames.
func (t *PollTransport) Messages() <-chan []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.msgCh
}

// Errors yields the fatal transport error, if any.
func (t *PollTransport) Errors() <-chan error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errCh
}

// Close stops the poll loop.
func (t *PollTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return nil
	}
	t.open = false
	if t.cancel != nil {
		t.cancel()
	}
	return nil
}

// caller must hold t.mu
func (t *PollTransport) synthesize(env *models.Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		return
	}
	select {
	case t.msgCh <- b:
	default:
		// consumer stalled; drop rather than block Send
	}
}

type pollResponse struct {
	Success bool                `json:"success"`
	Data    []models.MarketData `json:"data"`
}

func (t *PollTransport) pollLoop(ctx context.Context, msgCh chan []byte) {
	defer close(msgCh)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.inflight {
				// Previous fetch still outstanding; skip this tick instead of
				// stacking requests.
				t.mu.Unlock()
				continue
			}
			queries := t.buildQueries()
			t.inflight = true
			t.mu.Unlock()

			for _, q := range queries {
				t.fetch(ctx, q.dt, q.symbols)
			}

			t.mu.Lock()
			t.inflight = false
			t.mu.Unlock()
		}
	}
}

type pollQuery struct {
	dt      models.DataType
	symbols []string
}

// caller must hold t.mu
func (t *PollTransport) buildQueries() []pollQuery {
	out := make([]pollQuery, 0, len(t.watch))
	for dt, set := range t.watch {
		if len(set) == 0 {
			continue
		}
		syms := make([]string, 0, len(set))
		for s := range set {
			syms = append(syms, s)
		}
		out = append(out, pollQuery{dt: dt, symbols: syms})
	}
	return out
}

func (t *PollTransport) fetch(ctx context.Context, dt models.DataType, symbols []string) {
	var resp pollResponse
	err := t.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    t.baseURL + "/market/latest",
		Headers: map[string]string{
			"Authorization": "Bearer " + t.apiKey,
		},
		QueryParams: map[string][]string{
			"symbols": symbols,
			"type":    {string(dt)},
		},
	}, &resp)
	if err != nil || !resp.Success {
		if err == nil {
			err = fmt.Errorf("provider returned success=false")
		}
		// A failed poll is an error frame, not a transport death; the client
		// counts it and the next tick retries.
		t.mu.Lock()
		t.synthesize(&models.Envelope{Type: models.MsgError, Message: err.Error()})
		t.mu.Unlock()
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range resp.Data {
		md := &resp.Data[i]
		t.synthesize(&models.Envelope{
			Type:      models.MsgMarketData,
			Symbol:    md.Symbol,
			DataType:  md.DataType,
			Data:      md.Data,
			Timestamp: md.Timestamp,
		})
	}
}

var _ drepo.Transport = (*PollTransport)(nil)
