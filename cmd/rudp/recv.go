package main

import (
	"fmt"

	"rudp/peer"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var recvOpts struct {
	port  uint16
	count int
}

var recvCmd = &cobra.Command{
	Use:   "recv",
	Short: "Receive messages on a local port",
	Long: `Bind a local port, print a token senders can use, and print each message as
it is delivered. Messages from every sender are delivered in order per sender.`,
	Example: `  rudp recv --port 23000
  rudp recv --port 23000 --count 4 --compress zstd`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pm, err := openConnection()
		if err != nil {
			return err
		}
		defer pm.Conn().Close()

		if err := pm.Conn().SetLocalEndpoint(recvOpts.port); err != nil {
			return err
		}
		local := pm.Conn().LocalAddr()

		token, err := peer.GenerateToken(cfg.Name, nil, uint16(local.Port))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		info := color.New(color.FgYellow).SprintFunc()
		from := color.New(color.FgCyan).SprintFunc()
		fmt.Fprintf(out, "%s listening on %s\n", info("rudp"), local)
		fmt.Fprintf(out, "%s %s\n", info("token"), token)

		for i := 0; recvOpts.count == 0 || i < recvOpts.count; i++ {
			message, sender, err := pm.ReceiveMessage(cfg.BufferSize)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s (%d bytes): %s\n", from(sender.String()), len(message), message)
		}
		return nil
	},
}

func init() {
	flags := recvCmd.Flags()
	flags.Uint16Var(&recvOpts.port, "port", 0, "local port to bind (0 picks a free port)")
	flags.IntVar(&recvOpts.count, "count", 0, "exit after this many messages (0 = run until interrupted)")
	rootCmd.AddCommand(recvCmd)
}
