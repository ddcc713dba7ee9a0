package ackhandler

import (
	"time"

	"github.com/quicrecovery/quicrecovery/congestion"
	"github.com/quicrecovery/quicrecovery/protocol"
	"github.com/quicrecovery/quicrecovery/qlog"
	"github.com/quicrecovery/quicrecovery/utils"
)

// SendProbe is invoked when the PTO timer fires and the connection needs
// to transmit a probe packet in a given space. It is the recovery
// engine's only outward call into the connection's send path.
type SendProbe func(level protocol.EncryptionLevel)

// Config configures a Recovery engine. Zero-value fields all have sane
// defaults (NopLogger, no qlog sink, New Reno), mirroring the teacher's
// own Config structs that default to "off" for anything optional.
type Config struct {
	// Controller selects which congestion-control algorithm to run.
	// An unrecognized value falls back to Reno.
	Controller congestion.Type

	// SendProbe is invoked when the PTO timer fires. May be nil in tests
	// that only exercise loss detection, not probe emission.
	SendProbe SendProbe

	// IsClientWithout1RTTKeys disables amplification-limited handling of
	// the Initial/Handshake PTO count the way aioquic's
	// QuicConnection.is_client_without_1rtt_keys flag does: a client that
	// has not yet seen a Handshake-level ACK keeps the PTO timer armed
	// on the Initial space even after Initial is nominally idle.
	IsClientWithout1RTTKeys bool

	// Logger receives human-readable diagnostic messages. Defaults to a
	// no-op logger.
	Logger utils.Logger

	// EventSink receives structured qlog-style recovery events. Defaults
	// to a no-op sink.
	EventSink qlog.EventSink

	// MaxAckDelay overrides the peer's advertised max_ack_delay transport
	// parameter once negotiated; zero means "use protocol.MaxAckDelay".
	MaxAckDelay time.Duration
}

func (c *Config) logger() utils.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return utils.NopLogger()
}

func (c *Config) sink() qlog.EventSink {
	if c.EventSink != nil {
		return c.EventSink
	}
	return qlog.NopSink()
}

func (c *Config) maxAckDelay() time.Duration {
	if c.MaxAckDelay > 0 {
		return c.MaxAckDelay
	}
	return time.Duration(protocol.MaxAckDelay)
}
