package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/config"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/db/models"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/enums"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/logger"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/outbox"
)

func TestServiceProcessBatchContinuesAfterFailure(t *testing.T) {
	repo := &fakeRepo{
		events: []models.OutboxEvent{
			ledgerEvent(t, enums.EventCreditsPurchased, 0),
			ledgerEvent(t, enums.EventContactUnlocked, 0),
		},
	}
	pub := &fakePublisher{
		results: []publishResult{
			fakePublishResult{err: errors.New("transient")},
			fakePublishResult{},
		},
	}
	service := newTestService(t, repo, pub, nil)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if got := len(repo.failed); got != 1 {
		t.Fatalf("unexpected number of failed rows: %d", got)
	}
	if got := len(repo.published); got != 1 {
		t.Fatalf("unexpected number of published rows: %d", got)
	}
	if repo.failed[0] != repo.events[0].ID {
		t.Fatalf("failed row recorded wrong ID")
	}
	if repo.published[0] != repo.events[1].ID {
		t.Fatalf("published row recorded wrong ID")
	}
	if len(repo.terminal) != 0 {
		t.Fatalf("transient failure should not be terminal")
	}
}

func TestServicePublishesAttributes(t *testing.T) {
	event := ledgerEvent(t, enums.EventContactUnlocked, 0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{results: []publishResult{fakePublishResult{}}}
	service := newTestService(t, repo, pub, nil)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(pub.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(pub.sent))
	}
	msg := pub.sent[0]
	if msg.OrderingKey != event.AggregateID.String() {
		t.Fatalf("unexpected ordering key %q", msg.OrderingKey)
	}
	if msg.Attributes["event_type"] != string(enums.EventContactUnlocked) {
		t.Fatalf("unexpected event_type attribute %q", msg.Attributes["event_type"])
	}
	if msg.Attributes["aggregate_type"] != string(enums.AggregateCreditAccount) {
		t.Fatalf("unexpected aggregate_type attribute %q", msg.Attributes["aggregate_type"])
	}
	if msg.Attributes["event_id"] != event.ID.String() {
		t.Fatalf("unexpected event_id attribute %q", msg.Attributes["event_id"])
	}
	if string(msg.Data) != string(event.Payload) {
		t.Fatalf("payload should be forwarded unchanged")
	}
}

func TestServiceMarksMalformedEventTerminal(t *testing.T) {
	event := ledgerEvent(t, enums.EventCreditsPurchased, 0)
	event.Payload = datatypes.JSON(`{"version":99}`)
	unknown := ledgerEvent(t, enums.OutboxEventType("order_created"), 0)
	repo := &fakeRepo{events: []models.OutboxEvent{event, unknown}}
	pub := &fakePublisher{}
	service := newTestService(t, repo, pub, nil)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if len(pub.sent) != 0 {
		t.Fatalf("malformed events must not be published")
	}
	if len(repo.terminal) != 2 {
		t.Fatalf("expected both rows terminal, got %d", len(repo.terminal))
	}
	if len(repo.failed) != 0 {
		t.Fatalf("malformed rows should not be retried")
	}
}

func TestServiceMarksTerminalOnMaxAttempts(t *testing.T) {
	event := ledgerEvent(t, enums.EventSubscriptionStarted, 2)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{results: []publishResult{fakePublishResult{err: errors.New("still down")}}}
	service := newTestService(t, repo, pub, &config.OutboxConfig{BatchSize: 10, PollIntervalMS: 10, MaxAttempts: 3})

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(repo.terminal) != 1 || repo.terminal[0] != event.ID {
		t.Fatalf("expected row marked terminal, got %v", repo.terminal)
	}
	if len(repo.failed) != 0 {
		t.Fatalf("terminal row should not also be marked failed")
	}
}

func TestServiceSurfacesRepositoryErrors(t *testing.T) {
	repo := &fakeRepo{
		events:     []models.OutboxEvent{ledgerEvent(t, enums.EventCreditsPurchased, 0)},
		publishErr: errors.New("db gone"),
	}
	pub := &fakePublisher{results: []publishResult{fakePublishResult{}}}
	service := newTestService(t, repo, pub, nil)

	if _, err := service.processBatch(context.Background()); err == nil {
		t.Fatal("expected repository error to abort the batch")
	}
}

func TestNextBackoffCaps(t *testing.T) {
	base := 100 * time.Millisecond
	if got := nextBackoff(0, base, time.Second); got != 2*base {
		t.Fatalf("expected %v, got %v", 2*base, got)
	}
	if got := nextBackoff(800*time.Millisecond, base, time.Second); got != time.Second {
		t.Fatalf("expected cap at 1s, got %v", got)
	}
	for i := 0; i < 20; i++ {
		d := withJitter(base)
		if d < base || d >= base+jitterWindow {
			t.Fatalf("jitter out of range: %v", d)
		}
	}
	if withJitter(0) != 0 {
		t.Fatal("zero duration should stay zero")
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	log := logger.New(logger.Options{ServiceName: "outbox-test", Output: io.Discard})
	if _, err := NewService(ServiceParams{Config: &config.Config{}, Logger: log, DB: &fakeDB{}, PubSub: &fakePubSubClient{}}); err == nil {
		t.Fatal("expected missing repository to fail")
	}
	if _, err := NewService(ServiceParams{Config: &config.Config{}, Logger: log, DB: &fakeDB{}, PubSub: &fakePubSubClient{}, Repository: &fakeRepo{}}); err == nil {
		t.Fatal("expected missing topic publisher to fail")
	}
}

func newTestService(t *testing.T, repo outboxRepository, pub publisher, outboxCfgOverride *config.OutboxConfig) *Service {
	t.Helper()

	cfg := &config.Config{
		PubSub: config.PubSubConfig{LedgerTopic: "ledger-topic"},
		Outbox: config.OutboxConfig{BatchSize: 10, PollIntervalMS: 10, MaxAttempts: 5},
	}
	if outboxCfgOverride != nil {
		cfg.Outbox = *outboxCfgOverride
	}

	service, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logger.New(logger.Options{ServiceName: "outbox-test", Output: io.Discard}),
		DB:         &fakeDB{},
		PubSub:     &fakePubSubClient{},
		Repository: repo,
		Publisher:  pub,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

func ledgerEvent(tb testing.TB, eventType enums.OutboxEventType, attempts int) models.OutboxEvent {
	tb.Helper()
	id := uuid.New()
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    outbox.EnvelopeVersion,
		EventID:    id.String(),
		OccurredAt: time.Now().UTC(),
		Data:       json.RawMessage(`{"credits":10}`),
	})
	if err != nil {
		tb.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            id,
		EventType:     eventType,
		AggregateType: enums.AggregateCreditAccount,
		AggregateID:   uuid.New(),
		Payload:       payload,
		AttemptCount:  attempts,
	}
}

type fakeRepo struct {
	events     []models.OutboxEvent
	published  []uuid.UUID
	failed     []uuid.UUID
	terminal   []uuid.UUID
	publishErr error
}

func (f *fakeRepo) FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	return f.events, nil
}

func (f *fakeRepo) MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeRepo) MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error {
	f.terminal = append(f.terminal, id)
	return nil
}

type fakeDB struct{}

func (f *fakeDB) Ping(context.Context) error {
	return nil
}

func (f *fakeDB) WithTx(_ context.Context, fn func(*gorm.DB) error) error {
	return fn(nil)
}

type fakePubSubClient struct{}

func (f *fakePubSubClient) Ping(context.Context) error {
	return nil
}

func (f *fakePubSubClient) LedgerPublisher() *gcppubsub.Publisher {
	return nil
}

type fakePublisher struct {
	results []publishResult
	sent    []*gcppubsub.Message
}

func (f *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	f.sent = append(f.sent, msg)
	if len(f.results) == 0 {
		return fakePublishResult{}
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res
}

type fakePublishResult struct {
	err error
}

func (f fakePublishResult) Get(context.Context) (string, error) {
	return "msg-id", f.err
}
