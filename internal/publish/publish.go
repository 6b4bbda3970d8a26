// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package publish forwards decoded sentences to an MQTT broker, one topic per
// sentence kind.
package publish

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	logging "github.com/ipfs/go-log/v2"

	"github.com/Thermoquad/sextant/internal/config"
	"github.com/Thermoquad/sextant/internal/export"
	"github.com/Thermoquad/sextant/pkg/nmea"
)

var log = logging.Logger("sextant-publish")

// ErrTimeout is returned when the broker does not acknowledge a publish in time.
var ErrTimeout = errors.New("publish timed out")

// Client is the subset of mqtt.Client used by Publisher.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher encodes records and publishes them under a topic prefix.
type Publisher struct {
	client   Client
	prefix   string
	qos      byte
	retained bool
	encoding export.Encoding
	timeout  time.Duration

	published uint64
	failed    uint64
}

// New creates a publisher over an already connected client.
func New(client Client, cfg config.MQTTConfig) *Publisher {
	return &Publisher{
		client:   client,
		prefix:   strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:      cfg.QoS,
		retained: cfg.Retained,
		encoding: export.Encoding(cfg.Encoding),
		timeout:  5 * time.Second,
	}
}

// Connect dials the broker named in cfg.
func Connect(cfg config.MQTTConfig) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warnf("MQTT connection lost: %v", err)
		})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	log.Infof("connected to MQTT broker %s as %s", cfg.Broker, cfg.ClientID)
	return client, nil
}

// Topic returns the topic for a sentence kind, e.g. "sextant/gga".
func (p *Publisher) Topic(kind nmea.Kind) string {
	return p.prefix + "/" + strings.ToLower(kind.String())
}

// Publish encodes m and waits for the broker to accept it. Nil messages are
// ignored.
func (p *Publisher) Publish(m nmea.Message) error {
	r, ok := export.FromMessage(m)
	if !ok {
		return nil
	}

	payload, err := export.Encode(p.encoding, r)
	if err != nil {
		p.failed++
		return err
	}

	topic := p.Topic(m.Kind())
	token := p.client.Publish(topic, p.qos, p.retained, payload)
	if !token.WaitTimeout(p.timeout) {
		p.failed++
		log.Warnf("publish to %s timed out after %s", topic, p.timeout)
		return ErrTimeout
	}
	if err := token.Error(); err != nil {
		p.failed++
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	p.published++
	log.Debugf("published %d bytes to %s", len(payload), topic)
	return nil
}

// Counts returns the number of successful and failed publishes.
func (p *Publisher) Counts() (published, failed uint64) {
	return p.published, p.failed
}
