// Package status gets the status of the server.
package status

import (
	"context"
	"fmt"

	"github.com/mcstatus-io/mcutil/v4/status"
)

// DefaultPort is the default game server port.
const DefaultPort = 25565

// Online gets the number of players online on the server.
func Online(ctx context.Context, host string, port uint16) (int, error) {
	resp, err := status.Modern(ctx, host, port)
	if err != nil {
		return 0, fmt.Errorf("failed to get server status: %v", err)
	}
	return playerCount(resp.Players.Online), nil
}

// playerCount is the number of players online. Servers may omit the count.
func playerCount[T ~int | ~int32 | ~int64](online *T) int {
	if online == nil {
		return 0
	}
	return int(*online)
}
