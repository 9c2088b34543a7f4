package main

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"rudp/network"
	"rudp/peer"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var sendOpts struct {
	to        string
	token     string
	localPort uint16
	count     int
	interval  time.Duration
}

var sendCmd = &cobra.Command{
	Use:   "send [message...]",
	Short: "Send a message and wait until it is acknowledged",
	Long: `Send a message to a receiver given by --to host:port or by a --token printed
by "rudp recv". Without arguments the message is read from stdin.`,
	Example: `  rudp send --to 127.0.0.1:23000 Hello World!
  rudp send --token <token> --count 3 ping`,
	RunE: func(cmd *cobra.Command, args []string) error {
		host, port, err := resolveDestination(sendOpts.to, sendOpts.token)
		if err != nil {
			return err
		}

		message, err := readMessage(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		pm, err := openConnection()
		if err != nil {
			return err
		}
		defer pm.Conn().Close()

		if cmd.Flags().Changed("local-port") {
			if err := pm.Conn().SetLocalEndpoint(sendOpts.localPort); err != nil {
				return err
			}
		}
		if err := pm.Conn().SetRemoteEndpoint(host, port); err != nil {
			return err
		}

		ok := color.New(color.FgGreen).SprintFunc()
		for i := 0; i < sendOpts.count; i++ {
			if i > 0 && sendOpts.interval > 0 {
				time.Sleep(sendOpts.interval)
			}
			seq := pm.Conn().SendSequence()
			sent, err := pm.SendMessage(message)
			if err != nil {
				return fmt.Errorf("message %d: %w", i+1, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d bytes to %s:%d (seq %d)\n",
				ok("sent"), sent, host, port, seq)
		}
		return nil
	},
}

func resolveDestination(to, token string) (string, uint16, error) {
	switch {
	case to != "" && token != "":
		return "", 0, errors.New("use either --to or --token, not both")
	case token != "":
		td, err := peer.ParseToken(token, 0)
		if err != nil {
			return "", 0, err
		}
		host, port := td.Address()
		return host, port, nil
	case to != "":
		host, portStr, err := net.SplitHostPort(to)
		if err != nil {
			return "", 0, fmt.Errorf("invalid --to %q: %w", to, err)
		}
		port, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return "", 0, fmt.Errorf("invalid port in --to %q: %w", to, err)
		}
		return host, uint16(port), nil
	default:
		return "", 0, errors.New("a destination is required: --to host:port or --token")
	}
}

func readMessage(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) > 0 {
		return []byte(strings.Join(args, " ")), nil
	}
	data, err := io.ReadAll(io.LimitReader(stdin, network.MaxPayloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read message from stdin: %w", err)
	}
	return data, nil
}

func init() {
	flags := sendCmd.Flags()
	flags.StringVar(&sendOpts.to, "to", "", "receiver address as host:port")
	flags.StringVar(&sendOpts.token, "token", "", "receiver token printed by rudp recv")
	flags.Uint16Var(&sendOpts.localPort, "local-port", 0, "bind the sending socket to this port")
	flags.IntVar(&sendOpts.count, "count", 1, "send the message this many times")
	flags.DurationVar(&sendOpts.interval, "interval", 0, "pause between repeated sends")
	rootCmd.AddCommand(sendCmd)
}
