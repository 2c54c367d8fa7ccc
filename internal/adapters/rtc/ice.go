// Package rtc turns configured STUN/TURN servers into pion types. Media never
// passes through this server; peers only need a shared ICE server list.
package rtc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dkeye/LiveSession/internal/config"
	"github.com/pion/webrtc/v4"
)

var ErrBadICEServer = errors.New("bad ice server")

// ICEServers validates cfg and converts it. TURN entries need credentials.
func ICEServers(cfg []config.ICEServer) ([]webrtc.ICEServer, error) {
	out := make([]webrtc.ICEServer, 0, len(cfg))
	for i, s := range cfg {
		if len(s.URLs) == 0 {
			return nil, fmt.Errorf("%w: entry %d has no urls", ErrBadICEServer, i)
		}
		needsAuth := false
		for _, u := range s.URLs {
			switch {
			case strings.HasPrefix(u, "stun:"), strings.HasPrefix(u, "stuns:"):
			case strings.HasPrefix(u, "turn:"), strings.HasPrefix(u, "turns:"):
				needsAuth = true
			default:
				return nil, fmt.Errorf("%w: %q", ErrBadICEServer, u)
			}
		}
		if needsAuth && (s.Username == "" || s.Credential == "") {
			return nil, fmt.Errorf("%w: entry %d is TURN without credentials", ErrBadICEServer, i)
		}
		srv := webrtc.ICEServer{URLs: append([]string(nil), s.URLs...)}
		if s.Username != "" {
			srv.Username = s.Username
			srv.Credential = s.Credential
			srv.CredentialType = webrtc.ICECredentialTypePassword
		}
		out = append(out, srv)
	}
	return out, nil
}

// Configuration is the peer connection config matching what clients are told.
func Configuration(servers []webrtc.ICEServer) webrtc.Configuration {
	return webrtc.Configuration{ICEServers: servers}
}
