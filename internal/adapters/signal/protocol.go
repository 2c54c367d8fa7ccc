package signal

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/LiveSession/internal/core"
	"github.com/dkeye/LiveSession/internal/domain"
)

// Message types on the relay channel.
const (
	TypeJoinRoom     = "join-room"
	TypeOffer        = "offer"
	TypeAnswer       = "answer"
	TypeICECandidate = "ice-candidate"
	TypeStudentReady = "student-ready"
	TypeAdminReady   = "admin-ready"
	TypeJoined       = "joined"
	TypePeerLeft     = "peer-left"
	TypePing         = "ping"
	TypePong         = "pong"
	TypeError        = "error"
)

var (
	ErrMalformed   = errors.New("malformed message")
	ErrUnknownType = errors.New("unknown message type")
	ErrRateLimited = errors.New("rate limited")
)

// Inbound is a client message. Negotiation payloads stay raw.
type Inbound struct {
	Type      string          `json:"type"`
	RoomID    string          `json:"roomId,omitempty"`
	Role      string          `json:"role,omitempty"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// Outbound is a server message.
type Outbound struct {
	Type      string          `json:"type"`
	RoomID    string          `json:"roomId,omitempty"`
	Role      string          `json:"role,omitempty"`
	State     string          `json:"state,omitempty"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func hasPayload(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// payload returns the negotiation payload carried by a forwardable message.
func (m *Inbound) payload() json.RawMessage {
	switch m.Type {
	case TypeOffer:
		return m.Offer
	case TypeAnswer:
		return m.Answer
	case TypeICECandidate:
		return m.Candidate
	}
	return nil
}

// ParseInbound decodes and validates one client frame.
func ParseInbound(data []byte) (Inbound, error) {
	var m Inbound
	if err := json.Unmarshal(data, &m); err != nil {
		return Inbound{}, ErrMalformed
	}
	switch m.Type {
	case TypeJoinRoom:
		if m.RoomID == "" || m.Role == "" {
			return m, ErrMalformed
		}
	case TypeOffer, TypeAnswer, TypeICECandidate:
		if m.RoomID == "" || !hasPayload(m.payload()) {
			return m, ErrMalformed
		}
	case TypeStudentReady, TypePing:
	case "":
		return m, ErrMalformed
	default:
		return m, ErrUnknownType
	}
	return m, nil
}

// relayed is the frame the other room members receive for m.
func relayed(m Inbound) Outbound {
	out := Outbound{Type: m.Type, RoomID: m.RoomID}
	switch m.Type {
	case TypeOffer:
		out.Offer = m.Offer
	case TypeAnswer:
		out.Answer = m.Answer
	case TypeICECandidate:
		out.Candidate = m.Candidate
	}
	return out
}

// ErrorCode is the wire form of err.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, core.ErrRoleConflict):
		return "role-conflict"
	case errors.Is(err, core.ErrNotInRoom):
		return "not-in-room"
	case errors.Is(err, domain.ErrInvalidRole):
		return "invalid-role"
	case errors.Is(err, ErrRateLimited):
		return "rate-limited"
	case errors.Is(err, ErrUnknownType):
		return "unknown-type"
	default:
		return "malformed-message"
	}
}

func encode(v Outbound) core.Frame {
	b, err := json.Marshal(v)
	if err != nil {
		// Only raw payloads can fail and they were validated JSON on the way in.
		b, _ = json.Marshal(Outbound{Type: TypeError, Error: ErrorCode(ErrMalformed)})
	}
	return b
}

// Encoder implements orch.Encoder for the JSON wire protocol.
type Encoder struct{}

func (Encoder) Event(typ string) core.Frame {
	return encode(Outbound{Type: typ})
}

func (Encoder) Joined(room domain.RoomID, role domain.Role, state core.RoomState) core.Frame {
	return encode(Outbound{Type: TypeJoined, RoomID: string(room), Role: string(role), State: state.String()})
}

func (Encoder) PeerLeft(role domain.Role) core.Frame {
	return encode(Outbound{Type: TypePeerLeft, Role: string(role)})
}

func (Encoder) Error(err error) core.Frame {
	return encode(Outbound{Type: TypeError, Error: ErrorCode(err)})
}
