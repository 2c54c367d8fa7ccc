package rtc

import (
	"errors"
	"testing"

	"github.com/dkeye/LiveSession/internal/config"
	"github.com/pion/webrtc/v4"
)

func TestICEServers(t *testing.T) {
	got, err := ICEServers([]config.ICEServer{
		{URLs: []string{"stun:stun.l.google.com:19302"}},
		{URLs: []string{"turn:turn.example:3478", "turns:turn.example:5349"}, Username: "u", Credential: "p"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Username != "" {
		t.Errorf("stun entry got credentials: %+v", got[0])
	}
	if got[1].CredentialType != webrtc.ICECredentialTypePassword || got[1].Credential != "p" {
		t.Errorf("turn entry = %+v", got[1])
	}
}

func TestICEServersRejects(t *testing.T) {
	cases := map[string][]config.ICEServer{
		"no urls":      {{}},
		"bad scheme":   {{URLs: []string{"http://stun.example"}}},
		"turn no auth": {{URLs: []string{"turn:turn.example:3478"}}},
	}
	for name, in := range cases {
		if _, err := ICEServers(in); !errors.Is(err, ErrBadICEServer) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}

func TestICEServersEmpty(t *testing.T) {
	got, err := ICEServers(nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, %v", got, err)
	}
	if cfg := Configuration(got); len(cfg.ICEServers) != 0 {
		t.Fatalf("cfg = %+v", cfg)
	}
}
