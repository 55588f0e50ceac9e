package constants

import "time"

var BioConfig = struct {
	DefaultTimeout time.Duration
	FallbackText   string
	EmptyText      string
	MaxWords       int
	TriggerTone    string
}{
	DefaultTimeout: 15 * time.Second,
	FallbackText:   "Creative enthusiast | Tech lover | Dreamer",
	EmptyText:      "Could not generate bio.",
	MaxWords:       20,
	TriggerTone:    "professional",
}

var AIInputLimits = struct {
	MaxNameLength      int
	MaxWorkplaceLength int
}{
	MaxNameLength:      120,
	MaxWorkplaceLength: 200,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,                // open after 3 consecutive failures
	ResetTimeout:        30 * time.Second, // default wait before retry
	RateLimitTimeout:    1 * time.Hour,    // 429 responses
	HealthCheckInterval: 10 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var CacheTTL = struct {
	GeneratedBio  time.Duration
	LookupTimeout time.Duration
}{
	GeneratedBio:  60 * time.Minute,
	LookupTimeout: 2 * time.Second,
}

var HTTPConfig = struct {
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	CORSMaxAge        int
}{
	ReadHeaderTimeout: 5 * time.Second,
	ReadTimeout:       30 * time.Second,
	WriteTimeout:      60 * time.Second,
	IdleTimeout:       120 * time.Second,
	ShutdownTimeout:   10 * time.Second,
	CORSMaxAge:        300,
}

var WebSocketConfig = struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
	PongWait     time.Duration
	SendBuffer   int
}{
	WriteTimeout: 10 * time.Second,
	PingInterval: 30 * time.Second,
	PongWait:     60 * time.Second,
	SendBuffer:   4,
}

var UploadConfig = struct {
	DefaultMaxBytes int64
	FormField       string
	RoutePrefix     string
}{
	DefaultMaxBytes: 10 << 20,
	FormField:       "file",
	RoutePrefix:     "/blobs/",
}
