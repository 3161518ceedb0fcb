package viera

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/devbar/viera2mqtt/internal/remote"
)

// Bridge operation constants.
const (
	// commandTimeout bounds a single TV operation triggered from MQTT.
	commandTimeout = 10 * time.Second

	// Special query payloads handled without touching the key catalogue.
	queryApps       = "APPS"
	queryDeviceInfo = "DEVICE_INFO"
	queryVolume     = "VOLUME"
)

// Bridge forwards MQTT commands to a Panasonic Viera TV and publishes
// TV status back to MQTT. It handles:
//   - Receiving key, volume, mute, and app commands from the command topic
//   - Answering query payloads (APPS, DEVICE_INFO, VOLUME)
//   - Publishing a retained switched-off status when the TV is unreachable
//   - Periodic status probing via the StatusReporter
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	mqtt      MQTTClient
	tv        TV
	topics    Topics
	qos       byte
	recorder  CommandRecorder // Optional command history persistence
	telemetry Telemetry       // Optional time-series metrics

	status *StatusReporter

	// Shutdown coordination
	done      chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
	ctx       context.Context
	ctxCancel context.CancelFunc

	// Logger
	logger   Logger
	loggerMu sync.RWMutex
}

// MQTTClient is the interface for MQTT operations.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// TV is the interface for the television under control.
// This is satisfied by *remote.Client.
type TV interface {
	// Host returns the TV's host, used as an identifier in telemetry.
	Host() string

	// SendKey sends a remote control key press.
	SendKey(ctx context.Context, key remote.Key) error

	// GetVolume returns the current volume (0-100).
	GetVolume(ctx context.Context) (int, error)

	// SetVolume sets the volume (0-100).
	SetVolume(ctx context.Context, volume int) error

	// GetMute returns the current mute state.
	GetMute(ctx context.Context) (bool, error)

	// SetMute sets the mute state.
	SetMute(ctx context.Context, mute bool) error

	// GetApps returns the installed applications.
	GetApps(ctx context.Context) ([]remote.App, error)

	// LaunchApp starts an application by product id.
	LaunchApp(ctx context.Context, productID string) error

	// GetDeviceInfo returns model and identity details.
	GetDeviceInfo(ctx context.Context) (*remote.DeviceInfo, error)
}

// Topics provides the MQTT topics the bridge publishes and subscribes on.
// This is satisfied by mqtt.Topics.
type Topics interface {
	Command() string
	Status() string
	Apps() string
	DeviceInfo() string
	Result() string
}

// CommandRecorder persists handled commands for the history API.
// It is optional - if nil, the bridge operates without persistence.
type CommandRecorder interface {
	// RecordCommand stores one handled command.
	// errText is empty unless outcome is error or dropped.
	RecordCommand(ctx context.Context, topic, payload, operation, outcome, errText string) error
}

// Telemetry receives time-series data points.
// It is optional - if nil, the bridge operates without telemetry.
// This is satisfied by *influxdb.Client.
type Telemetry interface {
	// WriteTVStatus records the outcome of a status probe.
	WriteTVStatus(tvHost string, reachable bool, volume int, mute bool)

	// WriteCommand records one handled command.
	WriteCommand(tvHost, operation, outcome string)
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// BridgeOptions holds configuration for creating a bridge.
type BridgeOptions struct {
	// MQTTClient is the MQTT client implementation.
	MQTTClient MQTTClient

	// TV is the television under control.
	TV TV

	// Topics provides the bridge's MQTT topics.
	Topics Topics

	// QoS is the quality of service for subscriptions and publishes.
	QoS byte

	// StatusInterval is how often to probe the TV for status.
	// Default: 30 seconds.
	StatusInterval time.Duration

	// Logger is optional structured logger.
	Logger Logger

	// Recorder is optional command history persistence.
	// If nil, the bridge operates without history.
	Recorder CommandRecorder

	// Telemetry is optional time-series metrics.
	// If nil, the bridge operates without telemetry.
	Telemetry Telemetry
}

// NewBridge creates a new bridge instance.
// Call Start() to begin operation.
func NewBridge(opts BridgeOptions) (*Bridge, error) {
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}
	if opts.TV == nil {
		return nil, fmt.Errorf("TV client is required")
	}
	if opts.Topics == nil {
		return nil, fmt.Errorf("topics are required")
	}

	// Bridge-level context aborts in-flight TV calls on shutdown
	ctx, ctxCancel := context.WithCancel(context.Background())

	b := &Bridge{
		mqtt:      opts.MQTTClient,
		tv:        opts.TV,
		topics:    opts.Topics,
		qos:       opts.QoS,
		recorder:  opts.Recorder,
		telemetry: opts.Telemetry,
		done:      make(chan struct{}),
		ctx:       ctx,
		ctxCancel: ctxCancel,
		logger:    opts.Logger,
	}

	b.status = NewStatusReporter(StatusReporterConfig{
		TV:        opts.TV,
		Publisher: opts.MQTTClient,
		Topics:    opts.Topics,
		QoS:       opts.QoS,
		Interval:  opts.StatusInterval,
		Telemetry: opts.Telemetry,
	})
	if opts.Logger != nil {
		b.status.SetLogger(opts.Logger)
	}

	return b, nil
}

// Start begins bridge operation.
// This subscribes to the command topic and starts status reporting.
func (b *Bridge) Start(ctx context.Context) error {
	commandTopic := b.topics.Command()
	if err := b.mqtt.Subscribe(commandTopic, b.qos, b.handleMessage); err != nil {
		return fmt.Errorf("subscribe to commands: %w", err)
	}
	b.logInfo("subscribed to commands", "topic", commandTopic)

	b.status.Start(ctx)

	// Publish initial status so subscribers see the TV state immediately
	if err := b.status.PublishNow(); err != nil {
		b.logError("failed to publish initial status", err)
	}

	b.logInfo("bridge started", "tv", b.tv.Host(), "status_topic", b.topics.Status())

	return nil
}

// Stop gracefully shuts down the bridge.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)

		// Cancel bridge context to abort in-flight TV calls
		b.ctxCancel()

		b.status.Stop()

		// Wait for pending handlers
		b.wg.Wait()

		b.logInfo("bridge stopped")
	})
}

// handleMessage processes one message from the command topic.
func (b *Bridge) handleMessage(topic string, payload []byte) {
	b.wg.Add(1)
	defer b.wg.Done()

	cmd, err := parsePayload(payload)
	if err != nil {
		if errors.Is(err, ErrEmptyCommand) {
			b.logDebug("empty payload received", "topic", topic)
			return
		}
		b.logWarn("dropping payload", "topic", topic, "error", err)
		b.finishCommand(topic, payload, "", cmd.input, OutcomeDropped, err)
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, commandTimeout)
	defer cancel()

	operation, err := b.execute(ctx, cmd)

	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
		b.logError("command failed", err, "operation", operation, "input", cmd.input)

		// An unreachable TV is reported as switched off, not as a crash.
		if errors.Is(err, remote.ErrUnreachable) {
			b.publishSwitchedOff()
		}
	} else {
		b.logDebug("command handled", "operation", operation, "input", cmd.input)
	}

	b.finishCommand(topic, payload, operation, cmd.input, outcome, err)
}

// execute dispatches a parsed command to the TV and returns the resolved
// operation kind.
func (b *Bridge) execute(ctx context.Context, cmd command) (string, error) {
	switch cmd.op {
	case OpSetVolume:
		return OpSetVolume, b.tv.SetVolume(ctx, cmd.volume)
	case OpSetMute:
		return OpSetMute, b.tv.SetMute(ctx, cmd.mute)
	case OpLaunchApp:
		return OpLaunchApp, b.tv.LaunchApp(ctx, cmd.appID)
	}

	// Text command: query words first, then the key catalogue.
	switch cmd.input {
	case queryApps:
		return OpGetApps, b.publishApps(ctx)
	case queryDeviceInfo:
		return OpGetDeviceInfo, b.publishDeviceInfo(ctx)
	case queryVolume:
		return OpGetVolume, b.publishVolume(ctx)
	}

	key, ok := remote.LookupKey(cmd.input)
	if !ok {
		// Unknown strings are passed through as raw key codes.
		key = remote.Key(cmd.input)
	}
	return OpSendKey, b.tv.SendKey(ctx, key)
}

// publishApps queries the installed apps and publishes them.
func (b *Bridge) publishApps(ctx context.Context) error {
	apps, err := b.tv.GetApps(ctx)
	if err != nil {
		return err
	}
	return b.publishJSON(b.topics.Apps(), apps, false)
}

// publishDeviceInfo queries device details and publishes them.
func (b *Bridge) publishDeviceInfo(ctx context.Context) error {
	info, err := b.tv.GetDeviceInfo(ctx)
	if err != nil {
		return err
	}
	return b.publishJSON(b.topics.DeviceInfo(), info, false)
}

// publishVolume probes volume and mute and publishes an "on" status.
// Routed through the status reporter so its duplicate-suppression cache
// stays in sync with the retained message on the broker.
func (b *Bridge) publishVolume(ctx context.Context) error {
	volume, err := b.tv.GetVolume(ctx)
	if err != nil {
		return err
	}
	mute, err := b.tv.GetMute(ctx)
	if err != nil {
		return err
	}
	return b.status.PublishOn(volume, mute)
}

// publishSwitchedOff publishes the retained switched-off status via the
// status reporter, keeping its duplicate-suppression cache in sync.
func (b *Bridge) publishSwitchedOff() {
	if err := b.status.PublishOff(); err != nil {
		b.logError("failed to publish switched-off status", err)
	}
}

// publishJSON marshals v and publishes it at the bridge QoS.
func (b *Bridge) publishJSON(topic string, v any, retained bool) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", topic, err)
	}
	return b.mqtt.Publish(topic, payload, b.qos, retained)
}

// finishCommand publishes the result message and records the command in
// history and telemetry. All sinks are best-effort.
func (b *Bridge) finishCommand(topic string, payload []byte, operation, input, outcome string, cmdErr error) {
	result := NewResult(operation, input, outcome, cmdErr)
	if err := b.publishJSON(b.topics.Result(), result, false); err != nil {
		b.logError("failed to publish result", err)
	}

	if b.recorder != nil {
		errText := ""
		if cmdErr != nil {
			errText = cmdErr.Error()
		}
		if err := b.recorder.RecordCommand(b.ctx, topic, string(payload), operation, outcome, errText); err != nil {
			b.logError("failed to record command", err)
		}
	}

	if b.telemetry != nil {
		b.telemetry.WriteCommand(b.tv.Host(), operation, outcome)
	}
}

// SetLogger sets the logger for the bridge.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()

	if b.status != nil {
		b.status.SetLogger(logger)
	}
}

// getLogger returns the current logger, which may be nil.
func (b *Bridge) getLogger() Logger {
	b.loggerMu.RLock()
	defer b.loggerMu.RUnlock()
	return b.logger
}

// logInfo logs an info message if logger is set.
func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

// logWarn logs a warning if logger is set.
func (b *Bridge) logWarn(msg string, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Warn(msg, keysAndValues...)
	}
}

// logError logs an error message if logger is set.
func (b *Bridge) logError(msg string, err error, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
	}
}

// logDebug logs a debug message if logger is set.
func (b *Bridge) logDebug(msg string, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Debug(msg, keysAndValues...)
	}
}
