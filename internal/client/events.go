package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/osse101/TokenArcade_Go/internal/domain"
	"github.com/osse101/TokenArcade_Go/internal/logger"
	"github.com/osse101/TokenArcade_Go/internal/metrics"
)

// StreamEvent is one server-pushed event
type StreamEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// GameUpdatedPayload names the game whose status changed
type GameUpdatedPayload struct {
	Game domain.GameType `json:"game"`
}

// StreamHandler handles a specific event type
type StreamHandler func(event StreamEvent) error

// ViewInvalidator is what pushed changes are forwarded to
type ViewInvalidator interface {
	InvalidateKeys(keys ...domain.ViewKey)
}

// EventStream consumes the API's event stream with auto-reconnect
type EventStream struct {
	url        string
	apiKey     string
	userID     string
	eventTypes []string
	handlers   map[string][]StreamHandler
	httpClient *http.Client
	newBackoff func() backoff.BackOff

	mu        sync.RWMutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewEventStream creates a stream consumer sharing the API client's base URL and identity
func NewEventStream(c *APIClient, eventTypes []string) *EventStream {
	return &EventStream{
		url:        c.BaseURL + PathEvents,
		apiKey:     c.APIKey,
		userID:     c.UserID,
		eventTypes: eventTypes,
		handlers:   make(map[string][]StreamHandler),
		httpClient: &http.Client{
			Timeout: 0, // streams stay open
		},
		newBackoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = streamInitialBackoff
			b.MaxInterval = streamMaxBackoff
			return b
		},
	}
}

// OnEvent registers a handler for a specific event type
func (s *EventStream) OnEvent(eventType string, handler StreamHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[eventType] = append(s.handlers[eventType], handler)
}

// Bind forwards pushed ledger, leveling, team and game changes to inv, so a teammate's
// play refreshes this client's team score.
func (s *EventStream) Bind(inv ViewInvalidator) {
	fixed := map[string]domain.ViewKey{
		domain.PushLedgerUpdated:   domain.ViewLedger,
		domain.PushLevelingUpdated: domain.ViewLeveling,
		domain.PushTeamUpdated:     domain.ViewTeam,
	}
	for eventType, key := range fixed {
		s.OnEvent(eventType, func(StreamEvent) error {
			inv.InvalidateKeys(key)
			return nil
		})
	}
	s.OnEvent(domain.PushGameUpdated, func(evt StreamEvent) error {
		var p GameUpdatedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return fmt.Errorf("failed to decode game.updated payload: %w", err)
		}
		if !p.Game.Valid() {
			return fmt.Errorf("%w: %s", domain.ErrInvalidGame, p.Game)
		}
		inv.InvalidateKeys(domain.StatusView(p.Game))
		return nil
	})
}

// Start begins the connection loop in the background
func (s *EventStream) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.connectLoop(ctx)
}

// Stop shuts the stream down and waits for the loop to exit
func (s *EventStream) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// IsConnected returns true while a stream is open
func (s *EventStream) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

func (s *EventStream) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}

func (s *EventStream) connectLoop(ctx context.Context) {
	defer s.wg.Done()

	b := s.newBackoff()
	consecutiveFailures := 0

	for {
		if ctx.Err() != nil {
			logger.Info(logMsgStreamStopped)
			return
		}

		err := s.connect(ctx, b.Reset)
		s.setConnected(false)
		if ctx.Err() != nil {
			logger.Info(logMsgStreamStopped)
			return
		}

		consecutiveFailures++
		wait := b.NextBackOff()
		metrics.StreamReconnects.Inc()
		logger.Warn(logMsgStreamFailed,
			"error", err,
			"backoff", wait,
			"consecutive_failures", consecutiveFailures)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			logger.Info(logMsgStreamStopped)
			return
		}
	}
}

func (s *EventStream) connect(ctx context.Context, onConnected func()) error {
	url := s.url
	if len(s.eventTypes) > 0 {
		url += "?types=" + strings.Join(s.eventTypes, ",")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if s.apiKey != "" {
		req.Header.Set(HeaderAPIKey, s.apiKey)
	}
	if s.userID != "" {
		req.Header.Set(HeaderUserID, s.userID)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBodySize))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	s.setConnected(true)
	onConnected()
	logger.Info(logMsgStreamConnected, "url", url)

	return s.readEvents(ctx, resp.Body)
}

var errStreamClosed = errors.New("stream closed unexpectedly")

func (s *EventStream) readEvents(ctx context.Context, body io.Reader) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, streamBufferSize), streamBufferSize)

	var eventID, eventType, data string

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := scanner.Text()
		if line == "" {
			if data != "" {
				s.dispatch(eventID, eventType, data)
			}
			eventID, eventType, data = "", "", ""
			continue
		}

		switch {
		case strings.HasPrefix(line, "id: "):
			eventID = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "event: "):
			eventType = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading stream: %w", err)
	}
	return errStreamClosed
}

func (s *EventStream) dispatch(id, eventType, data string) {
	if eventType == EventTypeKeepalive || eventType == EventTypeConnected {
		return
	}

	var evt StreamEvent
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		logger.Warn(logMsgStreamParseError, "error", err, "data", data)
		return
	}
	if eventType != "" {
		evt.Type = eventType
	}
	if id != "" {
		evt.ID = id
	}

	s.mu.RLock()
	handlers := s.handlers[evt.Type]
	s.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(evt); err != nil {
			logger.Error(logMsgStreamHandlerError, "event_type", evt.Type, "error", err)
		}
	}
}
