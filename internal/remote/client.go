package remote

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultPort is the TCP port the TV's UPnP control services listen on.
const DefaultPort = 55000

// defaultTimeout bounds each request when the caller supplies no timeout.
const defaultTimeout = 4 * time.Second

// Client drives a Panasonic Viera TV over its HTTP control interface.
//
// The client is stateless apart from the encryption flag set by
// CheckEncryption; all methods are safe for concurrent use.
type Client struct {
	host    string
	port    int
	baseURL string

	httpClient *http.Client

	encMu     sync.RWMutex
	encrypted bool
}

// New creates a client for the TV at host:port.
//
// A zero port selects DefaultPort; a zero timeout selects a conservative
// default suitable for a TV on the local network.
func New(host string, port int, timeout time.Duration) *Client {
	if port == 0 {
		port = DefaultPort
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		host:    host,
		port:    port,
		baseURL: fmt.Sprintf("http://%s:%d", host, port),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Host returns the configured TV host.
func (c *Client) Host() string { return c.host }

// Port returns the configured TV port.
func (c *Client) Port() int { return c.port }

// Encrypted reports whether CheckEncryption detected an encrypted TV.
func (c *Client) Encrypted() bool {
	c.encMu.RLock()
	defer c.encMu.RUnlock()
	return c.encrypted
}

// requireUnencrypted gates command operations on the encryption probe.
func (c *Client) requireUnencrypted() error {
	if c.Encrypted() {
		return ErrEncryptionRequired
	}
	return nil
}

// SendKey sends a remote-control key event to the TV.
func (c *Client) SendKey(ctx context.Context, key Key) error {
	if err := c.requireUnencrypted(); err != nil {
		return err
	}

	params := fmt.Sprintf("<X_KeyEvent>%s</X_KeyEvent>", key)
	_, err := c.soapRequest(ctx, pathControlNRC, urnRemoteControl, "X_SendKey", params)
	return err
}

// GetVolume returns the TV's current volume (0-100).
func (c *Client) GetVolume(ctx context.Context) (int, error) {
	params := "<InstanceID>0</InstanceID><Channel>Master</Channel>"
	data, err := c.soapRequest(ctx, pathControlDMR, urnRenderingControl, "GetVolume", params)
	if err != nil {
		return 0, err
	}

	text, ok := xmlTagText(data, "CurrentVolume")
	if !ok {
		return 0, fmt.Errorf("%w: GetVolume response missing CurrentVolume", ErrUnexpectedResponse)
	}
	volume, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: CurrentVolume %q is not a number", ErrUnexpectedResponse, text)
	}
	return volume, nil
}

// SetVolume sets the TV's volume. Valid range is 0-100.
func (c *Client) SetVolume(ctx context.Context, volume int) error {
	if volume < 0 || volume > 100 {
		return ErrInvalidVolume
	}
	if err := c.requireUnencrypted(); err != nil {
		return err
	}

	params := fmt.Sprintf(
		"<InstanceID>0</InstanceID><Channel>Master</Channel><DesiredVolume>%d</DesiredVolume>",
		volume,
	)
	_, err := c.soapRequest(ctx, pathControlDMR, urnRenderingControl, "SetVolume", params)
	return err
}

// GetMute returns the TV's current mute state.
func (c *Client) GetMute(ctx context.Context) (bool, error) {
	params := "<InstanceID>0</InstanceID><Channel>Master</Channel>"
	data, err := c.soapRequest(ctx, pathControlDMR, urnRenderingControl, "GetMute", params)
	if err != nil {
		return false, err
	}

	text, ok := xmlTagText(data, "CurrentMute")
	if !ok {
		return false, fmt.Errorf("%w: GetMute response missing CurrentMute", ErrUnexpectedResponse)
	}
	return strings.TrimSpace(text) == "1", nil
}

// SetMute sets the TV's mute state.
func (c *Client) SetMute(ctx context.Context, mute bool) error {
	if err := c.requireUnencrypted(); err != nil {
		return err
	}

	muteValue := "0"
	if mute {
		muteValue = "1"
	}
	params := fmt.Sprintf(
		"<InstanceID>0</InstanceID><Channel>Master</Channel><DesiredMute>%s</DesiredMute>",
		muteValue,
	)
	_, err := c.soapRequest(ctx, pathControlDMR, urnRenderingControl, "SetMute", params)
	return err
}

// App is an installed application reported by the TV.
type App struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// appListEntry matches one app in the X_AppList payload. Entries are
// single-quote delimited: 'product_id=<id>'<name>'
var appListEntry = regexp.MustCompile(`'product_id=(.+?)'(.+?)'`)

// GetApps returns the applications installed on the TV.
func (c *Client) GetApps(ctx context.Context) ([]App, error) {
	if err := c.requireUnencrypted(); err != nil {
		return nil, err
	}

	data, err := c.soapRequest(ctx, pathControlNRC, urnRemoteControl, "X_GetAppList", "")
	if err != nil {
		return nil, err
	}

	raw, ok := xmlTagText(data, "X_AppList")
	if !ok {
		return nil, fmt.Errorf("%w: X_GetAppList response missing X_AppList", ErrUnexpectedResponse)
	}

	var apps []App
	for _, match := range appListEntry.FindAllStringSubmatch(html.UnescapeString(raw), -1) {
		apps = append(apps, App{ID: match[1], Name: match[2]})
	}
	return apps, nil
}

// LaunchApp launches an application on the TV by product id.
func (c *Client) LaunchApp(ctx context.Context, productID string) error {
	if productID == "" {
		return fmt.Errorf("%w: empty product id", ErrUnexpectedResponse)
	}
	if err := c.requireUnencrypted(); err != nil {
		return err
	}

	params := fmt.Sprintf(
		"<X_AppType>vc_app</X_AppType><X_LaunchKeyword>product_id=%s</X_LaunchKeyword>",
		productID,
	)
	_, err := c.soapRequest(ctx, pathControlNRC, urnRemoteControl, "X_LaunchApp", params)
	return err
}

// DeviceInfo is the TV's self-description from its UPnP device document.
type DeviceInfo struct {
	FriendlyName string `json:"friendly_name"`
	Manufacturer string `json:"manufacturer"`
	ModelName    string `json:"model_name"`
	ModelNumber  string `json:"model_number,omitempty"`
	UDN          string `json:"udn"`
}

// GetDeviceInfo fetches and parses the TV's device description document.
func (c *Client) GetDeviceInfo(ctx context.Context) (*DeviceInfo, error) {
	data, err := c.httpGet(ctx, pathDeviceDescription)
	if err != nil {
		return nil, err
	}

	info := &DeviceInfo{}
	fields := []struct {
		tag  string
		dest *string
	}{
		{"friendlyName", &info.FriendlyName},
		{"manufacturer", &info.Manufacturer},
		{"modelName", &info.ModelName},
		{"modelNumber", &info.ModelNumber},
		{"UDN", &info.UDN},
	}
	for _, f := range fields {
		if text, ok := xmlTagText(data, f.tag); ok {
			*f.dest = strings.TrimSpace(text)
		}
	}

	if info.FriendlyName == "" && info.UDN == "" {
		return nil, fmt.Errorf("%w: device description missing expected fields", ErrUnexpectedResponse)
	}
	return info, nil
}

// CheckEncryption probes the TV's service definition for the encrypted
// pairing protocol. Encrypted TVs (2018+ firmware) expose
// X_GetEncryptSessionId and reject plaintext commands; the client records
// the result and gates command operations on it.
func (c *Client) CheckEncryption(ctx context.Context) (bool, error) {
	data, err := c.httpGet(ctx, pathServiceDefinition)
	if err != nil {
		return false, err
	}

	encrypted := strings.Contains(string(data), "X_GetEncryptSessionId")

	c.encMu.Lock()
	c.encrypted = encrypted
	c.encMu.Unlock()

	return encrypted, nil
}
