package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/devbar/viera2mqtt/internal/remote"
)

// rootFlags holds the persistent connection flags.
type rootFlags struct {
	host    string
	port    int
	timeout int
	asJSON  bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "vieractl",
		Short:         "Remote control for Panasonic Viera TVs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&flags.host, "host", "", "TV host (defaults to TV_HOST)")
	cmd.PersistentFlags().IntVar(&flags.port, "port", remote.DefaultPort, "TV port")
	cmd.PersistentFlags().IntVar(&flags.timeout, "timeout", 4, "request timeout in seconds")
	cmd.PersistentFlags().BoolVar(&flags.asJSON, "json", false, "output JSON")

	cmd.AddCommand(
		sendCmd(flags),
		volumeCmd(flags),
		muteCmd(flags),
		appsCmd(flags),
		launchCmd(flags),
		infoCmd(flags),
		keysCmd(flags),
	)

	return cmd
}

// tv builds the TV client from the persistent flags.
// The TV_HOST environment variable backs the --host flag so scripts can
// share configuration with the bridge service.
func (f *rootFlags) tv() (*remote.Client, error) {
	host := f.host
	if host == "" {
		host = os.Getenv("TV_HOST")
	}
	if host == "" {
		return nil, fmt.Errorf("TV host required (use --host or set TV_HOST)")
	}
	return remote.New(host, f.port, time.Duration(f.timeout)*time.Second), nil
}

func sendCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "send <key> [key...]",
		Short: "Send remote control key presses",
		Long: "Send one or more key presses. Keys may be catalogue names\n" +
			"(VOLUME_UP, POWER) or raw codes (NRC_VOLUP-ONOFF).",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tv, err := flags.tv()
			if err != nil {
				return err
			}
			for _, arg := range args {
				key, ok := remote.LookupKey(arg)
				if !ok {
					key = remote.Key(arg)
				}
				if err := tv.SendKey(cmd.Context(), key); err != nil {
					return fmt.Errorf("sending %s: %w", arg, err)
				}
			}
			return nil
		},
	}
}

func volumeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "volume [level]",
		Short: "Get or set the volume (0-100)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tv, err := flags.tv()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				level, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("volume must be a number: %q", args[0])
				}
				return tv.SetVolume(cmd.Context(), level)
			}

			volume, err := tv.GetVolume(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), volume)
			return nil
		},
	}
}

func muteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mute [on|off]",
		Short: "Get or set the mute state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tv, err := flags.tv()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				state, err := parseOnOff(args[0])
				if err != nil {
					return err
				}
				return tv.SetMute(cmd.Context(), state)
			}

			mute, err := tv.GetMute(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatOnOff(mute))
			return nil
		},
	}
}

func appsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "List installed applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tv, err := flags.tv()
			if err != nil {
				return err
			}

			apps, err := tv.GetApps(cmd.Context())
			if err != nil {
				return err
			}

			if flags.asJSON {
				return printJSON(cmd, apps)
			}
			for _, app := range apps {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", app.ID, app.Name)
			}
			return nil
		},
	}
}

func launchCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "launch <product_id>",
		Short: "Launch an application by product id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tv, err := flags.tv()
			if err != nil {
				return err
			}
			return tv.LaunchApp(cmd.Context(), args[0])
		},
	}
}

func infoCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show TV model and identity details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tv, err := flags.tv()
			if err != nil {
				return err
			}

			info, err := tv.GetDeviceInfo(cmd.Context())
			if err != nil {
				return err
			}

			if flags.asJSON {
				return printJSON(cmd, info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Name:         %s\n", info.FriendlyName)
			fmt.Fprintf(cmd.OutOrStdout(), "Manufacturer: %s\n", info.Manufacturer)
			fmt.Fprintf(cmd.OutOrStdout(), "Model:        %s (%s)\n", info.ModelName, info.ModelNumber)
			fmt.Fprintf(cmd.OutOrStdout(), "UDN:          %s\n", info.UDN)
			return nil
		},
	}
}

func keysCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the remote control key catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalogue := remote.KeyCatalogue()
			if flags.asJSON {
				return printJSON(cmd, catalogue)
			}
			for _, entry := range catalogue {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", entry.Name, entry.Code)
			}
			return nil
		},
	}
}

// parseOnOff converts an on/off argument to a bool.
func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}

// formatOnOff renders a bool as on/off.
func formatOnOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// printJSON writes v to the command's stdout as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
