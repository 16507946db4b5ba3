package api_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/boundless-xyz/risc0-solana/internal/api"
	"github.com/boundless-xyz/risc0-solana/internal/client"
	router_groth16 "github.com/boundless-xyz/risc0-solana/internal/groth16"
	"github.com/boundless-xyz/risc0-solana/internal/router"
	"github.com/boundless-xyz/risc0-solana/internal/seal"
	"github.com/boundless-xyz/risc0-solana/internal/store"
	"github.com/boundless-xyz/risc0-solana/pkg/logger"
	"github.com/boundless-xyz/risc0-solana/pkg/rest"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type acceptAll struct{}

func (acceptAll) Verify(context.Context, seal.Proof, [32]byte, [32]byte) error { return nil }

type testServer struct {
	engine   *gin.Engine
	router   *router.Router
	programs *router.ProgramTable
	owner    solana.PrivateKey
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithEncoder(t, nil)
}

func newTestServerWithEncoder(t *testing.T, encoder *client.Encoder) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	owner := solana.NewWallet().PrivateKey
	programs := router.NewProgramTable()
	r, err := router.New(router.Config{
		ProgramID:    solana.NewWallet().PublicKey(),
		InitialOwner: owner.PublicKey(),
		Store:        store.NewMemoryStore(),
		Programs:     programs,
		Logger:       logger.New().WithOutput(io.Discard),
	})
	require.NoError(t, err)

	engine := gin.New()
	rest.Register(engine, api.Routes(api.NewHandler(r, encoder)), api.Middlewares())
	return &testServer{engine: engine, router: r, programs: programs, owner: owner}
}

func (s *testServer) deploy(module router.VerifierModule) solana.PublicKey {
	id := solana.NewWallet().PublicKey()
	authority := s.router.Address()
	s.programs.Deploy(id, module, &authority)
	return id
}

// do sends body signed by key; a nil key sends an anonymous request.
func (s *testServer) do(t *testing.T, method, path string, key solana.PrivateKey, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if key != nil {
		require.NoError(t, rest.SignRequest(req, key, payload))
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func reasonOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	reason, _ := body["reason"].(string)
	return reason
}

func TestInitializeAndOwnership(t *testing.T) {
	s := newTestServer(t)
	next := solana.NewWallet().PrivateKey

	w := s.do(t, http.MethodGet, "/v1/router", nil, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NotInitialized", reasonOf(t, w))

	w = s.do(t, http.MethodPost, "/v1/router/initialize", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "MissingAuthority", reasonOf(t, w))

	w = s.do(t, http.MethodPost, "/v1/router/initialize", next, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "InvalidInitializationAuthority", reasonOf(t, w))

	w = s.do(t, http.MethodPost, "/v1/router/initialize", s.owner, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var state api.RouterResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, s.owner.PublicKey().String(), state.Owner)
	assert.Equal(t, s.router.Address().String(), state.Address)
	assert.Nil(t, state.PendingOwner)

	w = s.do(t, http.MethodPost, "/v1/router/ownership/transfer", next, api.TransferOwnershipRequest{NewOwner: next.PublicKey().String()})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "NotOwner", reasonOf(t, w))

	w = s.do(t, http.MethodPost, "/v1/router/ownership/transfer", s.owner, api.TransferOwnershipRequest{NewOwner: next.PublicKey().String()})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.NotNil(t, state.PendingOwner)
	assert.Equal(t, next.PublicKey().String(), *state.PendingOwner)

	w = s.do(t, http.MethodPost, "/v1/router/ownership/accept", next, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, next.PublicKey().String(), state.Owner)

	w = s.do(t, http.MethodPost, "/v1/router/ownership/cancel", next, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NoPendingTransfer", reasonOf(t, w))
}

func TestVerifierLifecycle(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/router/initialize", s.owner, nil).Code)
	verifier := s.deploy(acceptAll{})

	add := api.AddVerifierRequest{Selector: "aabbccdd", Verifier: verifier.String()}
	w := s.do(t, http.MethodPost, "/v1/verifiers", s.owner, add)
	require.Equal(t, http.StatusCreated, w.Code)
	var entry api.EntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	assert.Equal(t, "aabbccdd", entry.Selector)
	assert.False(t, entry.Estopped)

	w = s.do(t, http.MethodPost, "/v1/verifiers", s.owner, add)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DuplicateActiveSelector", reasonOf(t, w))

	w = s.do(t, http.MethodPost, "/v1/verifiers", s.owner, api.AddVerifierRequest{Selector: "aabbcc", Verifier: verifier.String()})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/v1/verifiers", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []api.EntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)

	w = s.do(t, http.MethodDelete, "/v1/verifiers/aabbccdd", s.owner, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SelectorActive", reasonOf(t, w))

	w = s.do(t, http.MethodPost, "/v1/estop/owner", s.owner, api.OwnerEstopRequest{Selector: "aabbccdd", Verifier: verifier.String()})
	require.Equal(t, http.StatusOK, w.Code)
	var event api.EstopEventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &event))
	assert.Equal(t, router.ReasonOwnerRevoked, event.Reason)
	assert.Equal(t, s.owner.PublicKey().String(), event.TriggeredBy)

	w = s.do(t, http.MethodGet, "/v1/verifiers/aabbccdd", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	assert.True(t, entry.Estopped)

	w = s.do(t, http.MethodDelete, "/v1/verifiers/aabbccdd", s.owner, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/v1/verifiers/aabbccdd", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "EntryNotFound", reasonOf(t, w))

	w = s.do(t, http.MethodPost, "/v1/verifiers", s.owner, add)
	assert.Equal(t, http.StatusGone, w.Code)
	assert.Equal(t, "SelectorDeactivated", reasonOf(t, w))

	w = s.do(t, http.MethodGet, "/v1/events", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var events []api.EstopEventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	assert.Equal(t, []api.EstopEventResponse{event}, events)
}

func TestEncodeSeal(t *testing.T) {
	s := newTestServer(t)
	raw := make([]byte, seal.RawProofSize)
	for i := range raw {
		raw[i] = byte(i)
	}

	w := s.do(t, http.MethodPost, "/v1/seal/encode", nil, api.EncodeSealRequest{Proof: hex.EncodeToString(raw), Selector: "01020304"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.EncodeSealResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "01020304", resp.Selector)

	encoded, err := hex.DecodeString(resp.Seal)
	require.NoError(t, err)
	decoded, err := seal.UnmarshalBorsh(encoded)
	require.NoError(t, err)
	assert.Equal(t, [seal.RawProofSize]byte(raw), decoded.RawProof())

	w = s.do(t, http.MethodPost, "/v1/seal/encode", nil, api.EncodeSealRequest{Proof: hex.EncodeToString(raw)})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NoDefaultVerifier", reasonOf(t, w))

	params := router_groth16.Parameters{VerifyingKeyDigest: sha256.Sum256([]byte("vk"))}
	encoder := client.NewEncoder(params)
	withDefault := newTestServerWithEncoder(t, &encoder)
	w = withDefault.do(t, http.MethodPost, "/v1/seal/encode", nil, api.EncodeSealRequest{Proof: hex.EncodeToString(raw)})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, params.Selector().String(), resp.Selector)

	w = s.do(t, http.MethodPost, "/v1/seal/encode", nil, api.EncodeSealRequest{Proof: "abcd"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UnmarshalError", reasonOf(t, w))
}

// receiptCircuit has the public input layout of the receipt verifier.
type receiptCircuit struct {
	ControlRootLo frontend.Variable `gnark:",public"`
	ControlRootHi frontend.Variable `gnark:",public"`
	ClaimLo       frontend.Variable `gnark:",public"`
	ClaimHi       frontend.Variable `gnark:",public"`
	ControlID     frontend.Variable `gnark:",public"`
	Sum           frontend.Variable
}

func (c *receiptCircuit) Define(b frontend.API) error {
	b.AssertIsEqual(b.Add(c.ControlRootLo, c.ControlRootHi, c.ClaimLo, c.ClaimHi, c.ControlID), c.Sum)
	return nil
}

func TestGroth16EndToEnd(t *testing.T) {
	controlRoot := sha256.Sum256([]byte("control root"))
	controlID := sha256.Sum256([]byte("bn254 control id"))
	imageID := sha256.Sum256([]byte("image"))
	journal := sha256.Sum256([]byte("journal"))

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &receiptCircuit{})
	require.NoError(t, err)
	pk, gnarkVK, err := groth16.Setup(ccs)
	require.NoError(t, err)

	inputs := router_groth16.PublicInputs(controlRoot, router_groth16.ReceiptClaimDigest(imageID, journal), controlID)
	var sum fr.Element
	for i := range inputs {
		sum.Add(&sum, &inputs[i])
	}
	witness, err := frontend.NewWitness(&receiptCircuit{
		ControlRootLo: inputs[0].BigInt(new(big.Int)),
		ControlRootHi: inputs[1].BigInt(new(big.Int)),
		ClaimLo:       inputs[2].BigInt(new(big.Int)),
		ClaimHi:       inputs[3].BigInt(new(big.Int)),
		ControlID:     inputs[4].BigInt(new(big.Int)),
		Sum:           sum.BigInt(new(big.Int)),
	}, ecc.BN254.ScalarField())
	require.NoError(t, err)
	proof, err := groth16.Prove(ccs, pk, witness)
	require.NoError(t, err)
	raw, err := router_groth16.RawProofFromGnark(proof)
	require.NoError(t, err)

	vk, err := router_groth16.VerifyingKeyFromGnark(gnarkVK)
	require.NoError(t, err)
	verifier, err := router_groth16.NewVerifier(controlRoot, controlID, vk)
	require.NoError(t, err)

	encoder := client.NewEncoder(verifier.Parameters())
	s := newTestServerWithEncoder(t, &encoder)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/router/initialize", s.owner, nil).Code)
	programID := s.deploy(verifier)
	selector := verifier.Selector().String()
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/verifiers", s.owner, api.AddVerifierRequest{Selector: selector, Verifier: programID.String()}).Code)

	w := s.do(t, http.MethodGet, "/v1/programs", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var programs []api.ProgramResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &programs))
	require.Len(t, programs, 1)
	assert.Equal(t, programID.String(), programs[0].ProgramID)
	require.NotNil(t, programs[0].Selector)
	assert.Equal(t, selector, *programs[0].Selector)
	assert.True(t, programs[0].Default)
	require.NotNil(t, programs[0].UpgradeAuthority)
	assert.Equal(t, s.router.Address().String(), *programs[0].UpgradeAuthority)

	// no selector given: the service encodes for the verifier it serves
	w = s.do(t, http.MethodPost, "/v1/seal/encode", nil, api.EncodeSealRequest{Proof: hex.EncodeToString(raw[:])})
	require.Equal(t, http.StatusOK, w.Code)
	var encoded api.EncodeSealResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &encoded))
	assert.Equal(t, selector, encoded.Selector)

	verify := api.VerifyRequest{
		Seal:          encoded.Seal,
		ImageID:       hex.EncodeToString(imageID[:]),
		JournalDigest: hex.EncodeToString(journal[:]),
	}
	w = s.do(t, http.MethodPost, "/v1/verify", nil, verify)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	tampered := verify
	other := sha256.Sum256([]byte("other journal"))
	tampered.JournalDigest = hex.EncodeToString(other[:])
	w = s.do(t, http.MethodPost, "/v1/verify", nil, tampered)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VerificationError", reasonOf(t, w))

	// a sound verifier never accepts the null claim, so the proof path fails
	sealBytes, err := hex.DecodeString(encoded.Seal)
	require.NoError(t, err)
	anyone := solana.NewWallet().PrivateKey
	w = s.do(t, http.MethodPost, "/v1/estop/proof", anyone, api.ProofEstopRequest{Selector: selector, Proof: hex.EncodeToString(sealBytes[seal.SelectorSize:])})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VerificationError", reasonOf(t, w))

	w = s.do(t, http.MethodPost, "/v1/verify", nil, verify)
	assert.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/v1/estop/owner", s.owner, api.OwnerEstopRequest{Selector: selector}).Code)
	w = s.do(t, http.MethodPost, "/v1/verify", nil, verify)
	assert.Equal(t, http.StatusGone, w.Code)
	assert.Equal(t, "SelectorDeactivated", reasonOf(t, w))
}

func TestEstopWithProofOnBrokenVerifier(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/router/initialize", s.owner, nil).Code)
	verifier := s.deploy(acceptAll{})
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/verifiers", s.owner, api.AddVerifierRequest{Selector: "aabbccdd", Verifier: verifier.String()}).Code)

	proof := hex.EncodeToString(make([]byte, seal.RawProofSize))
	w := s.do(t, http.MethodPost, "/v1/estop/proof", nil, api.ProofEstopRequest{Selector: "aabbccdd", Proof: proof})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	reporter := solana.NewWallet().PrivateKey
	w = s.do(t, http.MethodPost, "/v1/estop/proof", reporter, api.ProofEstopRequest{Selector: "aabbccdd", Proof: proof})
	require.Equal(t, http.StatusOK, w.Code)
	var event api.EstopEventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &event))
	assert.Equal(t, router.ReasonProofOfExploit, event.Reason)
	assert.Equal(t, reporter.PublicKey().String(), event.TriggeredBy)

	w = s.do(t, http.MethodPost, "/v1/estop/proof", reporter, api.ProofEstopRequest{Selector: "aabbccdd", Proof: proof})
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestOwnerSignatureDoesNotCarryToAnotherRoute(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/router/initialize", s.owner, nil).Code)

	verifier := s.deploy(acceptAll{})
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/verifiers", s.owner, api.AddVerifierRequest{Selector: "aabbccdd", Verifier: verifier.String()}).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/v1/estop/owner", s.owner, api.OwnerEstopRequest{Selector: "aabbccdd"}).Code)

	// A signed empty-body owner request, as sent for cancel.
	cancel := httptest.NewRequest(http.MethodPost, "/v1/router/ownership/cancel", nil)
	require.NoError(t, rest.SignRequest(cancel, s.owner, nil))

	remove := httptest.NewRequest(http.MethodDelete, "/v1/verifiers/aabbccdd", nil)
	remove.Header = cancel.Header.Clone()

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, remove)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/v1/verifiers/aabbccdd", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, cancel)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NoPendingTransfer", reasonOf(t, w))

	replayed := httptest.NewRequest(http.MethodPost, "/v1/router/ownership/cancel", nil)
	replayed.Header = cancel.Header.Clone()
	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, replayed)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
