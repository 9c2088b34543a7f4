package peer

import (
	"fmt"
	"net"

	"github.com/pion/stun"
)

const DefaultSTUNServer = "stun.l.google.com:19302"

// DiscoverExternalAddress asks a STUN server which address it sees for us.
func DiscoverExternalAddress(server string) (*net.UDPAddr, error) {
	if server == "" {
		server = DefaultSTUNServer
	}

	conn, err := net.Dial("udp4", server)
	if err != nil {
		return nil, fmt.Errorf("failed to reach stun server %s: %w", server, err)
	}
	defer conn.Close()

	c, err := stun.NewClient(conn)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var (
		result  *net.UDPAddr
		doneErr error
	)
	err = c.Do(stun.MustBuild(stun.TransactionID, stun.BindingRequest), func(e stun.Event) {
		if e.Error != nil {
			doneErr = e.Error
			return
		}
		var addr stun.XORMappedAddress
		if err := addr.GetFrom(e.Message); err != nil {
			doneErr = err
			return
		}
		result = &net.UDPAddr{IP: addr.IP, Port: addr.Port}
	})
	if err != nil {
		return nil, err
	}
	if doneErr != nil {
		return nil, doneErr
	}

	return result, nil
}
