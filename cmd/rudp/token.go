package main

import (
	"fmt"
	"net"
	"time"

	"rudp/peer"

	"github.com/spf13/cobra"
)

var tokenOpts struct {
	port   uint16
	ip     string
	stun   bool
	maxAge time.Duration
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Create a token that tells senders where to reach a receiver",
	RunE: func(cmd *cobra.Command, args []string) error {
		ip := net.ParseIP(tokenOpts.ip)
		if tokenOpts.ip != "" && ip == nil {
			return fmt.Errorf("invalid --ip %q", tokenOpts.ip)
		}
		if tokenOpts.stun {
			addr, err := peer.DiscoverExternalAddress(cfg.STUNServer)
			if err != nil {
				return err
			}
			log.WithField("external", addr.String()).Info("external address discovered")
			ip = addr.IP
		}

		token, err := peer.GenerateToken(cfg.Name, ip, tokenOpts.port)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var tokenDecodeCmd = &cobra.Command{
	Use:   "decode <token>",
	Short: "Show the endpoint inside a token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		td, err := peer.ParseToken(args[0], tokenOpts.maxAge)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "name:    %s\naddress: %s:%d\nissued:  %s\n",
			td.Name, td.IP, td.Port, time.Unix(td.Timestamp, 0).Format(time.RFC3339))
		return nil
	},
}

func init() {
	flags := tokenCmd.Flags()
	flags.Uint16Var(&tokenOpts.port, "port", 0, "receiver port")
	flags.StringVar(&tokenOpts.ip, "ip", "", "receiver IP (default 127.0.0.1)")
	flags.BoolVar(&tokenOpts.stun, "stun", false, "use the external address reported by the STUN server")
	_ = tokenCmd.MarkFlagRequired("port")

	tokenDecodeCmd.Flags().DurationVar(&tokenOpts.maxAge, "max-age", 0, "reject tokens older than this")

	tokenCmd.AddCommand(tokenDecodeCmd)
	rootCmd.AddCommand(tokenCmd)
}
