package notify

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// lastHashKey holds the hash of the last announced site.
const lastHashKey = "last_hash"

const (
	connectTimeout = 5 * time.Second
	setupTimeout   = 10 * time.Second
)

// NATSPublisher publishes SiteUpdated events to a JetStream subject and keeps
// the last announced hash in a KV bucket, so a restart does not announce the
// same site twice.
type NATSPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	kv      jetstream.KeyValue
	subject string
	now     func() time.Time
}

// NewNATSPublisher connects to cfg.NATSURL and makes sure the stream and KV
// bucket exist.
func NewNATSPublisher(ctx context.Context, cfg config.NotifyConfig) (*NATSPublisher, error) {
	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name("docnav"),
		nats.Timeout(connectTimeout))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNetwork, "failed to connect to NATS").
			WithContext("url", cfg.NATSURL).
			Retryable().
			Build()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.CategoryNetwork, "failed to create JetStream context").Build()
	}

	ctx, cancel := context.WithTimeout(ctx, setupTimeout)
	defer cancel()

	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        streamName(cfg.KVBucket),
		Description: "docnav site announcements",
		Subjects:    []string{cfg.Subject},
		MaxMsgs:     1000,
	}); err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.CategoryNetwork, "failed to create stream").
			WithContext("subject", cfg.Subject).
			Build()
	}

	kv, err := js.KeyValue(ctx, cfg.KVBucket)
	if err != nil {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      cfg.KVBucket,
			Description: "docnav notification state",
			History:     1,
		})
	}
	if err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.CategoryNetwork, "failed to open KV bucket").
			WithContext("bucket", cfg.KVBucket).
			Build()
	}

	slog.Info("NATS publisher ready",
		slog.String("url", cfg.NATSURL),
		logfields.Subject(cfg.Subject),
		slog.String("kv_bucket", cfg.KVBucket))

	p := newPublisher(js, kv, cfg.Subject)
	p.conn = conn
	return p, nil
}

func newPublisher(js jetstream.JetStream, kv jetstream.KeyValue, subject string) *NATSPublisher {
	return &NATSPublisher{js: js, kv: kv, subject: subject, now: time.Now}
}

// streamName derives a stream name from the bucket name; stream names may not
// contain dots or wildcards, which bucket names never do.
func streamName(bucket string) string {
	return strings.ToUpper(strings.ReplaceAll(bucket, "-", "_")) + "_EVENTS"
}

// Publish announces ev unless its hash matches the last announced one. A
// message the server drops as a duplicate within its dedupe window is not an
// announcement, so the stored hash stays where it was.
func (p *NATSPublisher) Publish(ctx context.Context, ev *SiteUpdated) (bool, error) {
	last, err := p.lastHash(ctx)
	if err != nil {
		return false, err
	}
	if last == ev.Hash {
		slog.Debug("Site already announced", logfields.Hash(ev.Hash))
		return false, nil
	}

	ev.PreviousHash = last
	ev.Timestamp = p.now().UTC()
	data, err := json.Marshal(ev)
	if err != nil {
		return false, fmt.Errorf("failed to marshal event: %w", err)
	}

	ack, err := p.js.Publish(ctx, p.subject, data, jetstream.WithMsgID(ev.Hash))
	if err != nil {
		return false, errors.WrapError(err, errors.CategoryNetwork, "failed to publish event").
			WithContext("subject", p.subject).
			Retryable().
			Build()
	}
	if ack != nil && ack.Duplicate {
		slog.Debug("Server dropped duplicate announcement",
			logfields.Subject(p.subject),
			logfields.Hash(ev.Hash))
		return false, nil
	}
	if _, err := p.kv.Put(ctx, lastHashKey, []byte(ev.Hash)); err != nil {
		return true, errors.WrapError(err, errors.CategoryNetwork, "failed to store announced hash").
			Retryable().
			Build()
	}

	slog.Info("Published site update",
		logfields.Subject(p.subject),
		logfields.Hash(ev.Hash),
		logfields.Revision(ev.RevisionID))
	return true, nil
}

func (p *NATSPublisher) lastHash(ctx context.Context) (string, error) {
	entry, err := p.kv.Get(ctx, lastHashKey)
	if stderrors.Is(err, jetstream.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryNetwork, "failed to read announced hash").
			Retryable().
			Build()
	}
	return string(entry.Value()), nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
