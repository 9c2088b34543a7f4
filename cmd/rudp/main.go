package main

import (
	"fmt"
	"os"

	"rudp/internal/config"
	"rudp/internal/utils"
	"rudp/network"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile          string
	logLevel         string
	timeoutMs        int
	retryLimit       int
	receiveTimeoutMs int
	compression      string

	cfg *config.Config
	log *logrus.Entry
)

var rootCmd = &cobra.Command{
	Use:   "rudp",
	Short: "Reliable, ordered datagrams over UDP",
	Long: `rudp sends and receives discrete messages over UDP using Stop-and-Wait ARQ:
every message is retransmitted until the receiver acknowledges it, and the
receiver delivers each sender's messages exactly once and in order.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		flags := cmd.Flags()
		if flags.Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if flags.Changed("timeout-ms") {
			cfg.TimeoutMs = timeoutMs
		}
		if flags.Changed("retry-limit") {
			cfg.RetryLimit = retryLimit
		}
		if flags.Changed("receive-timeout-ms") {
			cfg.ReceiveTimeoutMs = receiveTimeoutMs
		}
		if flags.Changed("compress") {
			cfg.Compression = compression
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		log, err = utils.SetUpLogrus(cmd.ErrOrStderr(), cfg.LogLevel)
		return err
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ~/.rudp/config.yaml)")
	flags.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.IntVar(&timeoutMs, "timeout-ms", config.DefaultTimeoutMs, "ACK wait per transmission in milliseconds")
	flags.IntVar(&retryLimit, "retry-limit", 0, "transmissions per message before giving up (0 = unlimited)")
	flags.IntVar(&receiveTimeoutMs, "receive-timeout-ms", 0, "give up receiving after this long without a datagram (0 = wait forever)")
	flags.StringVar(&compression, "compress", string(network.CompressionNone), "payload compression: none, snappy, gzip, zstd")
}

// openConnection builds a connection and its message layer from cfg.
func openConnection() (*network.PacketManager, error) {
	connConfig := cfg.ConnectionConfig()
	connConfig.Logger = log

	conn, err := network.NewConnection(connConfig)
	if err != nil {
		return nil, err
	}
	mode, err := network.ParseCompression(cfg.Compression)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return network.NewPacketManager(conn, mode), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
