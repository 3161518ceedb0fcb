// Package remote drives Panasonic Viera televisions over their HTTP
// control interface.
//
// Viera TVs expose two UPnP control services on port 55000:
//
//   - nrc/control_0 (p00NetworkControl): remote-control key events,
//     app listing and launching
//   - dmr/control_0 (RenderingControl): volume and mute
//
// Commands are plain SOAP over HTTP. The package also reads the device
// description (nrc/ddd.xml) for model information and probes the service
// definition (nrc/sdd_0.xml) to detect TVs that require the encrypted
// pairing protocol. Encrypted TVs are detected and reported but not
// driven; command operations against them return ErrEncryptionRequired.
//
// A powered-off TV drops its network listener entirely, so every
// operation can fail with ErrUnreachable. Callers decide how to surface
// that; the package never retries.
//
// # Usage
//
//	tv := remote.New("192.168.1.50", 0, 0)
//	if err := tv.SendKey(ctx, remote.KeyVolumeUp); err != nil { ... }
//
//	key, ok := remote.LookupKey("volume_up")
package remote
