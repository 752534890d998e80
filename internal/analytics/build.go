package analytics

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/alexanderramin/kallan/internal/repository"
)

// Sink modes accepted by BuildSink.
const (
	ModeOff    = "off"
	ModeLog    = "log"
	ModeStore  = "store"
	ModeRemote = "remote"
)

// SinkDeps carries what the individual sinks need.
type SinkDeps struct {
	Repo   repository.AnalyticsRepo
	HTTP   HTTPConfig
	Logger *slog.Logger
}

// BuildSink combines the sinks named by modes. No modes, or "off" anywhere,
// yields a NoopSink.
func BuildSink(modes []string, deps SinkDeps) (Sink, error) {
	var sinks MultiSink
	seen := make(map[string]bool)
	for _, raw := range modes {
		mode := strings.ToLower(strings.TrimSpace(raw))
		if mode == "" || seen[mode] {
			continue
		}
		seen[mode] = true
		switch mode {
		case ModeOff:
			return NoopSink{}, nil
		case ModeLog:
			sinks = append(sinks, NewLogSink(deps.Logger))
		case ModeStore:
			if deps.Repo == nil {
				return nil, fmt.Errorf("analytics mode %q: no store configured", mode)
			}
			sinks = append(sinks, NewStoreSink(deps.Repo))
		case ModeRemote:
			cfg := deps.HTTP
			if cfg.Logger == nil {
				cfg.Logger = deps.Logger
			}
			s, err := NewHTTPSink(cfg)
			if err != nil {
				return nil, fmt.Errorf("analytics mode %q: %w", mode, err)
			}
			sinks = append(sinks, s)
		default:
			return nil, fmt.Errorf("unknown analytics mode %q", raw)
		}
	}
	switch len(sinks) {
	case 0:
		return NoopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return sinks, nil
	}
}
