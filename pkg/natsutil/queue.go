/*
 * Copyright 2025 Vantage MSP Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package natsutil provides the JetStream plumbing the engine queues run on.
package natsutil

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/vantagemsp/vantage/pkg/models"
)

const (
	// QueryStream holds every integration's job queue.
	QueryStream = "VANTAGE_QUERIES"

	// querySubjectPrefix keys queue subjects by integration id.
	querySubjectPrefix = "query."

	consumerAckWait    = 5 * time.Minute
	consumerMaxDeliver = 3
)

// QuerySubject returns the queue subject for one integration.
func QuerySubject(integrationID string) string {
	return querySubjectPrefix + integrationID
}

// Connect dials NATS, applying mTLS when security is configured.
func Connect(natsURL string, security *models.SecurityConfig, extraOpts ...nats.Option) (*nats.Conn, error) {
	var opts []nats.Option

	if security != nil {
		tlsConf, err := TLSConfig(security)
		if err != nil {
			return nil, fmt.Errorf("failed to build NATS TLS config: %w", err)
		}

		opts = append(opts, nats.Secure(tlsConf))
	}

	opts = append(opts, extraOpts...)

	nc, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return nc, nil
}

// EnsureQueryStream creates or updates the stream holding the per-integration
// job queues.
func EnsureQueryStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	stream, err := js.Stream(ctx, QueryStream)
	if err == nil {
		return stream, nil
	}

	stream, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     QueryStream,
		Subjects: []string{querySubjectPrefix + ">"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create or get stream %s: %w", QueryStream, err)
	}

	return stream, nil
}

// QueueConsumerConfig returns the durable pull consumer configuration for one
// integration's queue. MaxAckPending of one is the serialization mechanism:
// the server never hands out a second message while one is in flight, so jobs
// for an integration cannot overlap.
func QueueConsumerConfig(integrationID string) jetstream.ConsumerConfig {
	return jetstream.ConsumerConfig{
		Durable:       "engine-" + integrationID,
		FilterSubject: QuerySubject(integrationID),
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       consumerAckWait,
		MaxDeliver:    consumerMaxDeliver,
		MaxAckPending: 1,
	}
}

// CreateQueueConsumer provisions the durable pull consumer for one
// integration's queue.
func CreateQueueConsumer(ctx context.Context, js jetstream.JetStream, integrationID string) (jetstream.Consumer, error) {
	cfg := QueueConsumerConfig(integrationID)

	consumer, err := js.Consumer(ctx, QueryStream, cfg.Durable)
	if err == nil {
		return consumer, nil
	}

	consumer, err = js.CreateConsumer(ctx, QueryStream, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer %s: %w", cfg.Durable, err)
	}

	return consumer, nil
}

// QueuePublisher enqueues job messages onto integration queues.
type QueuePublisher struct {
	js jetstream.JetStream
}

func NewQueuePublisher(js jetstream.JetStream) *QueuePublisher {
	return &QueuePublisher{js: js}
}

// Publish enqueues one message on the integration's queue subject.
func (p *QueuePublisher) Publish(ctx context.Context, integrationID string, msg *models.QueueMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal queue message: %w", err)
	}

	if _, err := p.js.Publish(ctx, QuerySubject(integrationID), payload); err != nil {
		return fmt.Errorf("failed to publish queue message: %w", err)
	}

	return nil
}
