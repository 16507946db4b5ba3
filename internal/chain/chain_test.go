package chain_test

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/boundless-xyz/risc0-solana/internal/chain"
	"github.com/boundless-xyz/risc0-solana/internal/router"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func programData(authority *solana.PublicKey) []byte {
	data := make([]byte, 45, 64)
	binary.LittleEndian.PutUint32(data[0:4], 3)
	binary.LittleEndian.PutUint64(data[4:12], 1234)
	if authority != nil {
		data[12] = 1
		copy(data[13:45], authority[:])
	}
	// program bytes follow the header
	return append(data, 0x7f, 0x45, 0x4c, 0x46)
}

func TestParseProgramDataAuthority(t *testing.T) {
	authority := solana.NewWallet().PublicKey()

	got, err := chain.ParseProgramDataAuthority(programData(&authority))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, authority, *got)

	got, err = chain.ParseProgramDataAuthority(programData(nil))
	require.NoError(t, err)
	assert.Nil(t, got)

	wrongTag := programData(&authority)
	wrongTag[0] = 2
	_, err = chain.ParseProgramDataAuthority(wrongTag)
	assert.ErrorIs(t, err, chain.ErrNotProgramData)

	_, err = chain.ParseProgramDataAuthority(make([]byte, 10))
	assert.ErrorIs(t, err, chain.ErrNotProgramData)
}

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// newRpcServer answers getAccountInfo from accounts, keyed by address.
func newRpcServer(t *testing.T, accounts map[solana.PublicKey][]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Method != "getAccountInfo" || len(req.Params) == 0 {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}

		var address string
		if err := json.Unmarshal(req.Params[0], &address); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var value interface{}
		if data, ok := accounts[solana.MustPublicKeyFromBase58(address)]; ok {
			value = map[string]interface{}{
				"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
				"executable": false,
				"lamports":   1000000,
				"owner":      solana.BPFLoaderUpgradeableProgramID.String(),
				"rentEpoch":  0,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"context": map[string]interface{}{"slot": 1},
				"value":   value,
			},
		})
	}))
}

func TestRpcAuthorityResolver(t *testing.T) {
	ctx := context.Background()
	routerAccount := solana.NewWallet().PublicKey()
	upgradeable := solana.NewWallet().PublicKey()
	immutable := solana.NewWallet().PublicKey()

	upgradeableData, err := chain.ProgramDataAddress(upgradeable)
	require.NoError(t, err)
	immutableData, err := chain.ProgramDataAddress(immutable)
	require.NoError(t, err)

	server := newRpcServer(t, map[solana.PublicKey][]byte{
		upgradeableData: programData(&routerAccount),
		immutableData:   programData(nil),
	})
	defer server.Close()

	resolver := chain.NewRpcAuthorityResolver(server.URL)

	authority, err := resolver.UpgradeAuthority(ctx, upgradeable)
	require.NoError(t, err)
	require.NotNil(t, authority)
	assert.Equal(t, routerAccount, *authority)

	authority, err = resolver.UpgradeAuthority(ctx, immutable)
	require.NoError(t, err)
	assert.Nil(t, authority)

	_, err = resolver.UpgradeAuthority(ctx, solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, router.ErrInvalidVerifier)
}

func TestLoadKeys(t *testing.T) {
	program := solana.NewWallet().PublicKey()

	keys, err := chain.LoadKeys(program.String(), "", "")
	require.NoError(t, err)
	assert.Equal(t, program, keys.Keys.ProgramID)
	assert.True(t, keys.Keys.UsesDefaultOwner())
	assert.Nil(t, keys.Keys.Owner)

	owner := solana.NewWallet().PrivateKey
	// solana-keygen files hold the secret key as a JSON array of numbers
	var numbers []int
	for _, b := range owner {
		numbers = append(numbers, int(b))
	}
	raw, err := json.Marshal(numbers)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "owner.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	keys, err = chain.LoadKeys(program.String(), owner.PublicKey().String(), path)
	require.NoError(t, err)
	assert.False(t, keys.Keys.UsesDefaultOwner())
	assert.Equal(t, owner.PublicKey(), keys.Keys.InitialOwner)
	assert.Equal(t, owner, keys.Keys.Owner)

	_, err = chain.LoadKeys("", "", "")
	assert.Error(t, err)
	_, err = chain.LoadKeys("not base58!", "", "")
	assert.Error(t, err)
}
