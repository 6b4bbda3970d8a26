// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package publish

import (
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Thermoquad/sextant/internal/config"
	"github.com/Thermoquad/sextant/internal/export"
	"github.com/Thermoquad/sextant/pkg/nmea"
)

const ggaSentence = "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47\r\n"

// fakeToken completes immediately unless stalled.
type fakeToken struct {
	err     error
	stalled bool
}

func (t *fakeToken) Wait() bool { return !t.stalled }

func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.stalled }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !t.stalled {
		close(ch)
	}
	return ch
}

func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	sent  []published
	token *fakeToken
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic, qos, retained, payload.([]byte)})
	if c.token != nil {
		return c.token
	}
	return &fakeToken{}
}

func parseGGA(t *testing.T) nmea.Message {
	t.Helper()
	msg, _, err := nmea.Parse([]byte(ggaSentence))
	if err != nil || msg == nil {
		t.Fatalf("Parse() = %v, %v", msg, err)
	}
	return msg
}

func mqttConfig(encoding string) config.MQTTConfig {
	cfg := config.Default().MQTT
	cfg.TopicPrefix = "boat/gnss/"
	cfg.QoS = 1
	cfg.Retained = true
	cfg.Encoding = encoding
	return cfg
}

func TestPublisher_Topic(t *testing.T) {
	p := New(&fakeClient{}, mqttConfig(config.EncodingJSON))
	if got := p.Topic(nmea.KindGSV); got != "boat/gnss/gsv" {
		t.Fatalf("Topic() = %q", got)
	}
}

func TestPublisher_Publish(t *testing.T) {
	for _, enc := range []string{config.EncodingJSON, config.EncodingCBOR} {
		t.Run(enc, func(t *testing.T) {
			client := &fakeClient{}
			p := New(client, mqttConfig(enc))

			if err := p.Publish(parseGGA(t)); err != nil {
				t.Fatalf("Publish() error: %v", err)
			}
			if len(client.sent) != 1 {
				t.Fatalf("sent %d messages, want 1", len(client.sent))
			}

			msg := client.sent[0]
			if msg.topic != "boat/gnss/gga" || msg.qos != 1 || !msg.retained {
				t.Errorf("topic=%q qos=%d retained=%v", msg.topic, msg.qos, msg.retained)
			}
			r, err := export.Decode(export.Encoding(enc), msg.payload)
			if err != nil {
				t.Fatalf("payload does not decode: %v", err)
			}
			if r.Kind != "GGA" || r.Satellites == nil || *r.Satellites != 8 {
				t.Errorf("decoded record %+v", r)
			}

			if ok, failed := p.Counts(); ok != 1 || failed != 0 {
				t.Errorf("counts=%d/%d", ok, failed)
			}
		})
	}
}

func TestPublisher_IgnoresNil(t *testing.T) {
	client := &fakeClient{}
	p := New(client, mqttConfig(config.EncodingJSON))
	if err := p.Publish(nil); err != nil {
		t.Fatalf("Publish(nil) error: %v", err)
	}
	if len(client.sent) != 0 {
		t.Fatal("nil message should not be published")
	}
}

func TestPublisher_BrokerError(t *testing.T) {
	brokerErr := errors.New("not authorized")
	client := &fakeClient{token: &fakeToken{err: brokerErr}}
	p := New(client, mqttConfig(config.EncodingJSON))

	err := p.Publish(parseGGA(t))
	if !errors.Is(err, brokerErr) {
		t.Fatalf("err=%v, want wrapped %v", err, brokerErr)
	}
	if _, failed := p.Counts(); failed != 1 {
		t.Errorf("failed=%d, want 1", failed)
	}
}

func TestPublisher_Timeout(t *testing.T) {
	client := &fakeClient{token: &fakeToken{stalled: true}}
	p := New(client, mqttConfig(config.EncodingJSON))

	if err := p.Publish(parseGGA(t)); !errors.Is(err, ErrTimeout) {
		t.Fatalf("err=%v, want ErrTimeout", err)
	}
}
