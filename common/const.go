package common

import "time"

const (
	// AppName names the binary, config file and state directory.
	AppName = "cookiewatch"

	// DefaultRPCPort is the loopback port of the RPC daemon.
	DefaultRPCPort = 9472

	// DefaultGuardWindow is how long a deleted cookie stays blocked.
	DefaultGuardWindow = 30 * time.Second

	// DefaultSettleDelay is the pause before deletion verification.
	DefaultSettleDelay = 500 * time.Millisecond

	// MaxMessageSize bounds a single native messaging frame.
	MaxMessageSize = 1 << 20
)

// Notification methods pushed to RPC clients.
const (
	NotifyCookieRegenerated = "cookie.regenerated"
	NotifyScanProgress      = "cookies.scanProgress"
)
