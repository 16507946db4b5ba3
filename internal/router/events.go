package router

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/boundless-xyz/risc0-solana/internal/seal"
	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

const (
	ReasonOwnerRevoked     = "Owner has revoked the verifier."
	ReasonProofOfExploit   = "Invalid Proof was demonstrated, verifier compromised."
	emergencyStopEventName = "EmergencyStopEvent"
)

// EmergencyStopEvent is the audit record of every successful estop.
type EmergencyStopEvent struct {
	Router      solana.PublicKey
	Selector    seal.Selector
	Verifier    solana.PublicKey
	TriggeredBy solana.PublicKey
	Reason      string
}

// EventDiscriminator is the 8-byte Anchor prefix of the event log line.
func EventDiscriminator() [8]byte {
	sum := sha256.Sum256([]byte("event:" + emergencyStopEventName))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// MarshalAnchor encodes the event as discriminator || borsh(event).
func (e EmergencyStopEvent) MarshalAnchor() ([]byte, error) {
	body, err := borsh.Serialize(e)
	if err != nil {
		return nil, err
	}
	d := EventDiscriminator()
	return append(d[:], body...), nil
}

func UnmarshalAnchorEvent(data []byte) (EmergencyStopEvent, error) {
	var e EmergencyStopEvent
	d := EventDiscriminator()
	if len(data) < len(d) || !bytes.Equal(data[:len(d)], d[:]) {
		return e, fmt.Errorf("not an %s", emergencyStopEventName)
	}
	if err := borsh.Deserialize(&e, data[len(d):]); err != nil {
		return e, fmt.Errorf("decode %s: %w", emergencyStopEventName, err)
	}
	return e, nil
}

type emergencyStopEventJson struct {
	Router      string `json:"router"`
	Selector    string `json:"selector"`
	Verifier    string `json:"verifier"`
	TriggeredBy string `json:"triggered_by"`
	Reason      string `json:"reason"`
}

func (e EmergencyStopEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(emergencyStopEventJson{
		Router:      e.Router.String(),
		Selector:    e.Selector.String(),
		Verifier:    e.Verifier.String(),
		TriggeredBy: e.TriggeredBy.String(),
		Reason:      e.Reason,
	})
}

func (e *EmergencyStopEvent) UnmarshalJSON(data []byte) error {
	var raw emergencyStopEventJson
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var err error
	if e.Router, err = solana.PublicKeyFromBase58(raw.Router); err != nil {
		return fmt.Errorf("router: %w", err)
	}
	if e.Selector, err = seal.ParseSelector(raw.Selector); err != nil {
		return err
	}
	if e.Verifier, err = solana.PublicKeyFromBase58(raw.Verifier); err != nil {
		return fmt.Errorf("verifier: %w", err)
	}
	if e.TriggeredBy, err = solana.PublicKeyFromBase58(raw.TriggeredBy); err != nil {
		return fmt.Errorf("triggered_by: %w", err)
	}
	e.Reason = raw.Reason
	return nil
}

// Serialize lets events be published on the message bus.
func (e EmergencyStopEvent) Serialize() ([]byte, error) {
	return json.Marshal(e)
}
