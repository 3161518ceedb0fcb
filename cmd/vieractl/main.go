// vieractl - command-line remote control for Panasonic Viera televisions.
//
// It talks to the TV directly over its network remote-control interface;
// no MQTT broker is required.
package main

import "os"

// Version information - set at build time via ldflags.
var version = "dev"

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
