// Package eventbus bridges combat core events onto an in-process pub/sub bus
// so presentation, audio, and statistics consumers can subscribe per topic
// without the core knowing about them.
package eventbus

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/calder-games/skirmish/internal/config"
	"github.com/calder-games/skirmish/internal/game/event"
)

// Bus is an in-memory pub/sub bridge implementing event.Sink. Every event
// kind maps to its own topic; payloads are the JSON encoding of event.Event.
type Bus struct {
	pubsub *gochannel.GoChannel
	log    *zap.Logger
}

// New creates a Bus with per-subscriber buffering from cfg.
//
// Precondition: log must not be nil.
func New(cfg config.EventBusConfig, log *zap.Logger) *Bus {
	if log == nil {
		panic("eventbus.New: log must not be nil")
	}
	ps := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.BufferSize,
	}, newLoggerAdapter(log))
	return &Bus{pubsub: ps, log: log}
}

// Publish implements event.Sink. Encoding or publish failures are logged and
// dropped; the combat tick loop never blocks on a slow consumer.
func (b *Bus) Publish(ev event.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		b.log.Error("encoding combat event", zap.String("kind", string(ev.Kind)), zap.Error(err))
		return
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	if err := b.pubsub.Publish(string(ev.Kind), msg); err != nil {
		b.log.Error("publishing combat event", zap.String("kind", string(ev.Kind)), zap.Error(err))
	}
}

// Subscribe returns a channel of raw messages for one event kind. Consumers
// must Ack every message.
func (b *Bus) Subscribe(ctx context.Context, kind event.Kind) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, string(kind))
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// Decode unmarshals a bus message payload back into an event.Event.
func Decode(msg *message.Message) (event.Event, error) {
	var ev event.Event
	err := json.Unmarshal(msg.Payload, &ev)
	return ev, err
}

// loggerAdapter forwards watermill's internal logging to zap.
type loggerAdapter struct {
	log *zap.Logger
}

func newLoggerAdapter(log *zap.Logger) loggerAdapter {
	return loggerAdapter{log: log.Named("eventbus")}
}

func (a loggerAdapter) fields(err error, fields watermill.LogFields) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+1)
	if err != nil {
		out = append(out, zap.Error(err))
	}
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

// Error implements watermill.LoggerAdapter.
func (a loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, a.fields(err, fields)...)
}

// Info implements watermill.LoggerAdapter.
func (a loggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, a.fields(nil, fields)...)
}

// Debug implements watermill.LoggerAdapter.
func (a loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, a.fields(nil, fields)...)
}

// Trace implements watermill.LoggerAdapter.
func (a loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, a.fields(nil, fields)...)
}

// With implements watermill.LoggerAdapter.
func (a loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	zf := a.fields(nil, fields)
	return loggerAdapter{log: a.log.With(zf...)}
}
