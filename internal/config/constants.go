package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Request body cap. Create payloads carry a whole deck of cards, which
// comfortably fits in 1MB.
const MaxRequestBodyBytes int64 = 1 << 20

// Background job intervals
const ReaperJobInterval = 10 * time.Minute

// Session limits
const (
	MaxNicknameLength   = 40
	MaxParticipantsCap  = 500
	JoinCodeLength      = 6
	JoinCodeMaxAttempts = 20
)
