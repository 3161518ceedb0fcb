package viera

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/devbar/viera2mqtt/internal/remote"
)

// defaultStatusInterval is how often the TV is probed when no interval
// is configured.
const defaultStatusInterval = 30 * time.Second

// probeTimeout bounds a single status probe. Shorter than the interval
// so probes never overlap.
const probeTimeout = 5 * time.Second

// StatusReporter periodically probes the TV and publishes a retained
// status message. An unreachable TV is reported as switched off.
type StatusReporter struct {
	tv        TV
	publisher StatusPublisher
	topics    Topics
	qos       byte
	interval  time.Duration
	telemetry Telemetry

	// last published status, used to skip duplicate retained publishes
	last   *StatusMessage
	lastMu sync.Mutex

	// Shutdown coordination (stopOnce prevents double-close panics)
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	// Logger (optional)
	logger   Logger
	loggerMu sync.RWMutex
}

// StatusPublisher is the interface for publishing status messages.
// This is typically implemented by an MQTT client.
type StatusPublisher interface {
	// Publish sends a message to a topic with the specified QoS and retention.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// IsConnected returns true if the publisher is connected.
	IsConnected() bool
}

// StatusReporterConfig holds configuration for the status reporter.
type StatusReporterConfig struct {
	// TV is the television to probe.
	TV TV

	// Publisher is the MQTT client for publishing messages.
	Publisher StatusPublisher

	// Topics provides the status topic.
	Topics Topics

	// QoS is the quality of service for status publishes.
	QoS byte

	// Interval is how often to probe the TV.
	// Default: 30 seconds.
	Interval time.Duration

	// Telemetry is optional time-series metrics.
	Telemetry Telemetry
}

// NewStatusReporter creates a new status reporter.
// Call Start to begin probing.
func NewStatusReporter(cfg StatusReporterConfig) *StatusReporter {
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultStatusInterval
	}

	return &StatusReporter{
		tv:        cfg.TV,
		publisher: cfg.Publisher,
		topics:    cfg.Topics,
		qos:       cfg.QoS,
		interval:  interval,
		telemetry: cfg.Telemetry,
		done:      make(chan struct{}),
	}
}

// Start begins periodic status probing.
// Call Stop to shut down.
func (s *StatusReporter) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.probeLoop(ctx)
}

// Stop gracefully stops status probing.
// Safe to call multiple times (uses sync.Once).
func (s *StatusReporter) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
}

// SetLogger sets the logger for this reporter.
func (s *StatusReporter) SetLogger(logger Logger) {
	s.loggerMu.Lock()
	s.logger = logger
	s.loggerMu.Unlock()
}

// PublishNow probes the TV and publishes the status immediately.
// Useful for forcing an update after a significant event.
func (s *StatusReporter) PublishNow() error {
	return s.probe(context.Background())
}

// PublishOff publishes the retained switched-off status.
//
// All retained status publishes must flow through the reporter: a
// publish that bypassed the duplicate-suppression cache would leave it
// out of sync with what the broker holds, and later probes observing
// the cached state would be suppressed against a stale retained value.
func (s *StatusReporter) PublishOff() error {
	return s.publish(NewStatusOff())
}

// PublishOn publishes a retained on-status with the observed volume and
// mute state. See PublishOff for why this goes through the reporter.
func (s *StatusReporter) PublishOn(volume int, mute bool) error {
	return s.publish(NewStatusOn(volume, mute))
}

// probeLoop runs the periodic status probing.
func (s *StatusReporter) probeLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.probe(ctx); err != nil {
				s.logError("status probe failed", err)
			}
		}
	}
}

// probe queries volume and mute and publishes the resulting status.
//
// An unreachable TV publishes the fixed switched-off status. Other
// errors (an encrypted TV, a SOAP fault) keep the last retained status
// in place rather than misreporting the TV as off.
func (s *StatusReporter) probe(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	volume, err := s.tv.GetVolume(probeCtx)
	var mute bool
	if err == nil {
		mute, err = s.tv.GetMute(probeCtx)
	}

	if err != nil {
		if errors.Is(err, remote.ErrUnreachable) {
			if s.telemetry != nil {
				s.telemetry.WriteTVStatus(s.tv.Host(), false, 0, false)
			}
			return s.publish(NewStatusOff())
		}
		return err
	}

	if s.telemetry != nil {
		s.telemetry.WriteTVStatus(s.tv.Host(), true, volume, mute)
	}
	return s.publish(NewStatusOn(volume, mute))
}

// publish sends a status message unless it matches the last one.
// Retained duplicates carry no information and only churn the broker.
func (s *StatusReporter) publish(msg StatusMessage) error {
	if s.publisher == nil {
		return nil
	}

	s.lastMu.Lock()
	if s.last != nil && statusEqual(*s.last, msg) {
		s.lastMu.Unlock()
		return nil
	}
	s.last = &msg
	s.lastMu.Unlock()

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return s.publisher.Publish(s.topics.Status(), payload, s.qos, true)
}

// statusEqual compares the observable TV state, ignoring timestamps.
func statusEqual(a, b StatusMessage) bool {
	if a.Power != b.Power || a.Reason != b.Reason {
		return false
	}
	if (a.Volume == nil) != (b.Volume == nil) || (a.Mute == nil) != (b.Mute == nil) {
		return false
	}
	if a.Volume != nil && *a.Volume != *b.Volume {
		return false
	}
	if a.Mute != nil && *a.Mute != *b.Mute {
		return false
	}
	return true
}

// logError logs an error if logger is set.
func (s *StatusReporter) logError(msg string, err error) {
	s.loggerMu.RLock()
	logger := s.logger
	s.loggerMu.RUnlock()

	if logger != nil {
		logger.Error(msg, "error", err)
	}
}
