package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Config is the environment of the chatd server.
type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=8080"`
	SocketPort           int           `env:"SOCKET_PORT,default=8090"`
	DebugPort            int           `env:"DEBUG_PORT,default=8081"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,required=true"`
	AuthSecret           string        `env:"AUTH_SECRET"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=16"`
	DeliveryTimeout      time.Duration `env:"DELIVERY_TIMEOUT,default=100ms"`
	KeepAlive            time.Duration `env:"KEEP_ALIVE,default=30s"`
	ChannelCacheSize     int           `env:"CHANNEL_CACHE_SIZE,default=256"`
	ChannelCacheTTL      time.Duration `env:"CHANNEL_CACHE_TTL,default=5m"`
	DefaultChannels      string        `env:"DEFAULT_CHANNELS,default=general"`
}

// AuthEnabled reports whether calls must carry a bearer token signed with AuthSecret.
func (c Config) AuthEnabled() bool {
	return c.AuthSecret != ""
}

// Channels splits DefaultChannels on commas, dropping blanks.
func (c Config) Channels() []string {
	parts := lo.Map(strings.Split(c.DefaultChannels, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Compact(parts)
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"replacement must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
