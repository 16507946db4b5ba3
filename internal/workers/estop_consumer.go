package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/boundless-xyz/risc0-solana/internal/router"
	"github.com/boundless-xyz/risc0-solana/internal/seal"
	"github.com/boundless-xyz/risc0-solana/pkg/logger"
	"github.com/boundless-xyz/risc0-solana/pkg/rabbitmq"
	"github.com/boundless-xyz/risc0-solana/pkg/utilities"
	"github.com/gagliardetto/solana-go"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EstopProofConsumerName = "EstopProofConsumer"
	estopTimeout           = 30 * time.Second
)

var ErrReporterSignature = errors.New("reporter signature does not match message")

// EstopProofMessage reports a proof that a verifier accepts the null claim.
// Signature is Reporter's signature over SigningMessage.
type EstopProofMessage struct {
	Selector  string `json:"selector"`
	Proof     string `json:"proof"`
	Reporter  string `json:"reporter"`
	Verifier  string `json:"verifier,omitempty"`
	Signature string `json:"signature"`
}

func (m EstopProofMessage) SigningMessage() []byte {
	return []byte(fmt.Sprintf("estop-proof\n%s\n%s\n%s\n", m.Selector, m.Proof, m.Verifier))
}

// Sign fills Reporter and Signature from key.
func (m *EstopProofMessage) Sign(key solana.PrivateKey) error {
	sig, err := key.Sign(m.SigningMessage())
	if err != nil {
		return err
	}
	m.Reporter = key.PublicKey().String()
	m.Signature = sig.String()
	return nil
}

type ProofStopper interface {
	EmergencyStopWithProof(ctx context.Context, caller solana.PublicKey, selector seal.Selector, proof seal.Proof, opts ...router.EstopOption) (router.EmergencyStopEvent, error)
}

// EstopConsumer feeds reported exploit proofs into the router.
type EstopConsumer struct {
	router   ProofStopper
	consumer rabbitmq.IRabbitmqConsumer
	logger   *logger.Logger
}

func NewEstopConsumer(r ProofStopper, consumer rabbitmq.IRabbitmqConsumer, log *logger.Logger) *EstopConsumer {
	return &EstopConsumer{router: r, consumer: consumer, logger: log}
}

func (w *EstopConsumer) GetServiceName() string {
	return EstopProofConsumerName
}

func (w *EstopConsumer) StartService() {
	w.logger.Info("Starting estop proof consumer")

	if err := w.consumer.StartConsuming(w.handleDelivery); err != nil {
		w.logger.Error(err, "Estop proof consumer stopped")
	}
}

func (w *EstopConsumer) handleDelivery(d amqp.Delivery) {
	var msg EstopProofMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		w.logger.Error(err, "Failed to unmarshal estop proof message")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), estopTimeout)
	defer cancel()

	event, err := w.process(ctx, msg)
	if err != nil {
		w.logger.Errorf(err, "Estop proof for selector %s rejected", msg.Selector)
		return
	}
	w.logger.Warnf("Selector %s estopped on proof reported by %s", event.Selector, event.TriggeredBy)
}

func (w *EstopConsumer) process(ctx context.Context, msg EstopProofMessage) (router.EmergencyStopEvent, error) {
	selector, err := seal.ParseSelector(msg.Selector)
	if err != nil {
		return router.EmergencyStopEvent{}, err
	}
	raw, err := utilities.DecodeHexFixed(msg.Proof, seal.RawProofSize)
	if err != nil {
		return router.EmergencyStopEvent{}, fmt.Errorf("proof: %w", err)
	}
	proof, err := seal.UnmarshalProof(raw)
	if err != nil {
		return router.EmergencyStopEvent{}, err
	}
	reporter, err := solana.PublicKeyFromBase58(msg.Reporter)
	if err != nil {
		return router.EmergencyStopEvent{}, fmt.Errorf("reporter: %w", err)
	}
	sig, err := solana.SignatureFromBase58(msg.Signature)
	if err != nil {
		return router.EmergencyStopEvent{}, fmt.Errorf("signature: %w", err)
	}
	if !sig.Verify(reporter, msg.SigningMessage()) {
		return router.EmergencyStopEvent{}, ErrReporterSignature
	}

	var opts []router.EstopOption
	if msg.Verifier != "" {
		verifier, err := solana.PublicKeyFromBase58(msg.Verifier)
		if err != nil {
			return router.EmergencyStopEvent{}, fmt.Errorf("verifier: %w", err)
		}
		opts = append(opts, router.ExpectVerifier(verifier))
	}

	return w.router.EmergencyStopWithProof(ctx, reporter, selector, proof, opts...)
}
