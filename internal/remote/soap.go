package remote

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// UPnP service identifiers and control paths exposed by the TV.
const (
	urnRenderingControl = "schemas-upnp-org:service:RenderingControl:1"
	urnRemoteControl    = "panasonic-com:service:p00NetworkControl:1"

	pathControlDMR = "dmr/control_0"
	pathControlNRC = "nrc/control_0"

	pathDeviceDescription = "nrc/ddd.xml"
	pathServiceDefinition = "nrc/sdd_0.xml"
)

// soapEnvelope is the request template for UPnP control actions.
// The TV is strict about the exact envelope shape.
const soapEnvelope = `<?xml version="1.0" encoding="utf-8"?>` +
	`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" ` +
	`s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">` +
	`<s:Body>` +
	`<u:%s xmlns:u="urn:%s">%s</u:%s>` +
	`</s:Body>` +
	`</s:Envelope>`

// maxResponseSize caps response bodies to keep a misbehaving device from
// exhausting memory. App lists run a few KB at most.
const maxResponseSize = 1 << 20 // 1MB

// buildEnvelope renders the SOAP envelope for an action with inline params.
func buildEnvelope(action, urn, params string) []byte {
	return []byte(fmt.Sprintf(soapEnvelope, action, urn, params, action))
}

// soapRequest performs a UPnP control action against the TV.
//
// Network failures wrap ErrUnreachable. SOAP faults (HTTP 500 with a fault
// body) wrap ErrSOAPFault with the device's error description when present.
func (c *Client) soapRequest(ctx context.Context, path, urn, action, params string) ([]byte, error) {
	body := buildEnvelope(action, urn, params)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPAction", fmt.Sprintf(`"urn:%s#%s"`, urn, action))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	if resp.StatusCode != http.StatusOK {
		if fault, ok := xmlTagText(data, "errorDescription"); ok {
			return nil, fmt.Errorf("%w: %s %s", ErrSOAPFault, action, fault)
		}
		if fault, ok := xmlTagText(data, "faultstring"); ok {
			return nil, fmt.Errorf("%w: %s %s", ErrSOAPFault, action, fault)
		}
		return nil, fmt.Errorf("%w: %s returned HTTP %d", ErrSOAPFault, action, resp.StatusCode)
	}

	return data, nil
}

// httpGet fetches a device description document from the TV.
func (c *Client) httpGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+path, nil)
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s returned HTTP %d", ErrUnexpectedResponse, path, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	return data, nil
}

// xmlTagText extracts the character data of the first element whose local
// name matches tag. Namespace prefixes vary between firmware revisions, so
// matching on the local name only keeps the parser tolerant.
func xmlTagText(data []byte, tag string) (string, bool) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = false

	inTag := false
	var text strings.Builder
	for {
		token, err := decoder.Token()
		if err != nil {
			return "", false
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == tag {
				inTag = true
				text.Reset()
			}
		case xml.CharData:
			if inTag {
				text.Write(t)
			}
		case xml.EndElement:
			if inTag && t.Name.Local == tag {
				return text.String(), true
			}
		}
	}
}
