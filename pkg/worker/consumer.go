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

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/vantagemsp/vantage/pkg/logger"
	"github.com/vantagemsp/vantage/pkg/models"
)

// Consumer drains one integration's queue. Its consumer is provisioned with a
// single-message in-flight window, so fetching one message at a time is not
// just politeness: the server enforces that no second job for this
// integration starts until the current one is acked or times out.
type Consumer struct {
	integrationID string
	consumer      jetstream.Consumer
	processor     *Processor
	config        Config
	logger        logger.Logger
	metrics       Metrics
}

// NewConsumer wraps a provisioned JetStream consumer for one integration.
func NewConsumer(integrationID string, consumer jetstream.Consumer, processor *Processor, config Config, metrics Metrics, log logger.Logger) *Consumer {
	return &Consumer{
		integrationID: integrationID,
		consumer:      consumer,
		processor:     processor,
		config:        config,
		logger:        log,
		metrics:       metrics,
	}
}

// Run pulls and processes messages until the context is canceled.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info().
		Str("integration", c.integrationID).
		Msg("Queue consumer started")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().
				Str("integration", c.integrationID).
				Msg("Queue consumer stopped")

			return
		default:
			msgs, err := c.consumer.Fetch(1, jetstream.FetchMaxWait(time.Duration(c.config.FetchWait)))
			if err != nil {
				c.logger.Error().Err(err).
					Str("integration", c.integrationID).
					Msg("Failed to fetch messages")
				time.Sleep(time.Second)

				continue
			}

			for msg := range msgs.Messages() {
				c.handleMessage(ctx, msg)
			}

			if fetchErr := msgs.Error(); fetchErr != nil {
				c.logger.Debug().Err(fetchErr).
					Str("integration", c.integrationID).
					Msg("Fetch error")
			}
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg jetstream.Msg) {
	var queueMsg models.QueueMessage

	if err := json.Unmarshal(msg.Data(), &queueMsg); err != nil {
		// Malformed payloads can never succeed; drop them.
		c.logger.Error().Err(err).
			Str("integration", c.integrationID).
			Msg("Failed to decode queue message, terminating")
		_ = msg.Term()

		return
	}

	metadata, _ := msg.Metadata()

	var deliveries int
	if metadata != nil {
		deliveries = int(metadata.NumDelivered)
	}

	err := c.processor.Process(ctx, &queueMsg)
	if err == nil {
		_ = msg.Ack()
		return
	}

	if errors.Is(err, ErrUnknownJob) {
		c.logger.Error().Err(err).
			Str("integration", c.integrationID).
			Msg("Terminating message for unknown job")
		_ = msg.Term()

		return
	}

	c.logger.Error().Err(err).
		Str("integration", c.integrationID).
		Str("message_id", queueMsg.MessageID).
		Str("job", queueMsg.JobID).
		Int("deliveries", deliveries).
		Msg("Failed to process message")

	if deliveries >= c.config.MaxDeliver {
		c.metrics.RecordMessageDropped(c.integrationID, queueMsg.JobID, deliveries)
		_ = msg.Term()

		return
	}

	_ = msg.Nak()
}
