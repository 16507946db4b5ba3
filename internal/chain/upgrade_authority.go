package chain

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/boundless-xyz/risc0-solana/internal/router"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

const (
	programDataTag        = 3
	programDataHeaderSize = 4 + 8 + 1 + 32
)

var ErrNotProgramData = errors.New("account is not an upgradeable program data account")

// ProgramDataAddress derives the account holding a program's upgrade
// authority under the upgradeable BPF loader.
func ProgramDataAddress(program solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{program[:]}, solana.BPFLoaderUpgradeableProgramID)
	return addr, err
}

// ParseProgramDataAuthority decodes the upgrade authority from a program
// data account. A nil key means the program is immutable.
func ParseProgramDataAuthority(data []byte) (*solana.PublicKey, error) {
	if len(data) < programDataHeaderSize {
		return nil, ErrNotProgramData
	}
	if binary.LittleEndian.Uint32(data[0:4]) != programDataTag {
		return nil, ErrNotProgramData
	}

	switch data[12] {
	case 0:
		return nil, nil
	case 1:
		authority := solana.PublicKeyFromBytes(data[13:45])
		return &authority, nil
	default:
		return nil, ErrNotProgramData
	}
}

type getAccountInfoClient interface {
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
}

// RpcAuthorityResolver reads upgrade authorities from a Solana cluster.
type RpcAuthorityResolver struct {
	client getAccountInfoClient
}

func NewRpcAuthorityResolver(endpoint string) *RpcAuthorityResolver {
	return &RpcAuthorityResolver{client: rpc.New(endpoint)}
}

func (r *RpcAuthorityResolver) UpgradeAuthority(ctx context.Context, program solana.PublicKey) (*solana.PublicKey, error) {
	address, err := ProgramDataAddress(program)
	if err != nil {
		return nil, err
	}

	info, err := r.client.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, router.ErrInvalidVerifier
	}
	if err != nil {
		return nil, fmt.Errorf("fetch program data of %s: %w", program, err)
	}
	if info.Value == nil || info.Value.Data == nil {
		return nil, router.ErrInvalidVerifier
	}

	return ParseProgramDataAuthority(info.Value.Data.GetBinary())
}
