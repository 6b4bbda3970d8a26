// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/sextant/internal/metrics"
	"github.com/Thermoquad/sextant/internal/publish"
	"github.com/Thermoquad/sextant/internal/store"
	"github.com/Thermoquad/sextant/pkg/nmea"
)

var (
	publishBroker   string
	publishEncoding string
	publishStore    string
	publishMetrics  string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Forward decoded sentences to MQTT, SQLite and Prometheus",
	Long: `Decode sentences and forward them to any combination of sinks:

  MQTT:       one topic per kind under mqtt.topic_prefix (e.g. sextant/gga),
              JSON or CBOR payloads
  SQLite:     an append-only log queried by the history command
  Prometheus: sentence, error and fix counters on /metrics

Sinks are enabled in the configuration file or with the flags below. Only
sentences that decode and pass validation are forwarded; every outcome is
counted in metrics.`,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().StringVar(&publishBroker, "mqtt", "", "Enable MQTT and publish to this broker (tcp://host:1883)")
	publishCmd.Flags().StringVar(&publishEncoding, "encoding", "", "MQTT payload encoding (json or cbor)")
	publishCmd.Flags().StringVar(&publishStore, "store", "", "Enable the SQLite log at this path")
	publishCmd.Flags().StringVar(&publishMetrics, "metrics", "", "Enable Prometheus metrics on this address (:9108)")
}

// sinks fans one stream event out to the enabled outputs
type sinks struct {
	publisher *publish.Publisher
	store     *store.Store
	metrics   *metrics.Collector
	stats     *nmea.Statistics
}

func (s *sinks) handle(ev sentenceEvent) {
	s.stats.UpdateScan(ev.scan)
	if s.metrics != nil {
		s.metrics.ObserveScan(ev.scan)
	}
	if !ev.complete() {
		return
	}

	s.stats.Update(ev.msg, ev.err, ev.verrs)
	if s.metrics != nil {
		s.metrics.Observe(ev.msg, ev.err, ev.verrs)
	}
	if ev.msg == nil || len(ev.verrs) > 0 {
		return
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ev.msg); err != nil {
			log.Warnf("MQTT: %v", err)
		}
	}
	if s.store != nil {
		if err := s.store.Append(ev.msg); err != nil {
			log.Errorf("store: %v", err)
		}
	}
}

func runPublish(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("mqtt") {
		cfg.MQTT.Enable = true
		cfg.MQTT.Broker = publishBroker
	}
	if flags.Changed("encoding") {
		cfg.MQTT.Encoding = publishEncoding
	}
	if flags.Changed("store") {
		cfg.Store.Enable = true
		cfg.Store.Path = publishStore
	}
	if flags.Changed("metrics") {
		cfg.Metrics.Enable = true
		cfg.Metrics.Listen = publishMetrics
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !cfg.MQTT.Enable && !cfg.Store.Enable && !cfg.Metrics.Enable {
		return errors.New("no sink enabled: use --mqtt, --store or --metrics")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &sinks{stats: nmea.NewStatistics()}

	if cfg.MQTT.Enable {
		client, err := publish.Connect(cfg.MQTT)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		s.publisher = publish.New(client, cfg.MQTT)
	}

	if cfg.Store.Enable {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		s.store = st
	}

	if cfg.Metrics.Enable {
		s.metrics = metrics.New()
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.metrics.Handler())
		srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Infof("serving metrics on %s/metrics", cfg.Metrics.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("metrics server: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	log.Infof("reading from %s", connInfo)

	// Close the connection on shutdown so the blocked read returns
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	parser := nmea.NewParser(nmea.WithRequireChecksum(cfg.Parser.RequireChecksum))
	stream := newSentenceStream(parser)

	// Events are handled on this goroutine only; stats needs no locking
	events := make(chan sentenceEvent, 64)
	readErr := make(chan error, 1)
	go func() {
		readErr <- readStream(conn, stream, func(ev sentenceEvent) {
			ev.scan.Body = nil
			events <- ev
		})
		close(events)
	}()

	ticker := time.NewTicker(cfg.Stats.Interval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				err := <-readErr
				logSummary(s)
				if err == nil || isEndOfInput(err) || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("read error: %w", err)
			}
			s.handle(ev)

		case <-ticker.C:
			logSummary(s)
		}
	}
}

func logSummary(s *sinks) {
	s.stats.CalculateRates()
	log.Infof("sentences=%d valid=%d errors=%d noise=%dB rate=%.1f/s",
		s.stats.TotalSentences, s.stats.ValidSentences, s.stats.Errors(), s.stats.NoiseBytes, s.stats.SentenceRate)
	if s.publisher != nil {
		ok, failed := s.publisher.Counts()
		log.Infof("MQTT published=%d failed=%d", ok, failed)
	}
}
