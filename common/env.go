// Package common provides shared types and constants used across the
// cookiewatch surfaces: the RPC daemon, the native messaging host and the CLI.
package common

// Environment variable names for configuration.
const (
	// HomeEnv overrides the configuration and state directory.
	HomeEnv = "COOKIEWATCH_HOME"

	// DebugEnv enables debug logging.
	DebugEnv = "COOKIEWATCH_DEBUG"

	// RPCSecretEnv is the bearer token required by the RPC daemon.
	RPCSecretEnv = "COOKIEWATCH_RPC_SECRET"

	// RPCPortEnv overrides the RPC daemon port.
	RPCPortEnv = "COOKIEWATCH_RPC_PORT"

	// CDPURLEnv points the CLI and daemon at an already running browser's
	// DevTools endpoint instead of launching one.
	CDPURLEnv = "COOKIEWATCH_CDP_URL"
)

// EnvPrefix is the prefix shared by every environment variable above.
const EnvPrefix = "COOKIEWATCH"
