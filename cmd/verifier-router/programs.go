package main

import (
	"fmt"

	"github.com/boundless-xyz/risc0-solana/internal/client"
	"github.com/boundless-xyz/risc0-solana/internal/groth16"
	"github.com/boundless-xyz/risc0-solana/internal/router"
	"github.com/boundless-xyz/risc0-solana/pkg/logger"
	"github.com/boundless-xyz/risc0-solana/pkg/utilities"
	"github.com/gagliardetto/solana-go"
)

const routerAuthority = "router"

func digestOrDefault(name, value string, fallback groth16.Digest) (groth16.Digest, error) {
	if value == "" {
		return fallback, nil
	}
	raw, err := utilities.DecodeHexFixed(value, 32)
	if err != nil {
		return groth16.Digest{}, fmt.Errorf("%s: %w", name, err)
	}
	return groth16.Digest(raw), nil
}

// loadPrograms builds a Groth16 verifier module for every configured program.
// current is the verifier default seals are encoded for, nil without programs.
func loadPrograms(configs []VerifierConfig, routerAddress solana.PublicKey, log *logger.Logger) (programs *router.ProgramTable, current *groth16.Verifier, err error) {
	programs = router.NewProgramTable()
	var marked bool

	for _, cfg := range configs {
		programID, err := solana.PublicKeyFromBase58(cfg.ProgramID)
		if err != nil {
			return nil, nil, fmt.Errorf("verifier program id %q: %w", cfg.ProgramID, err)
		}

		controlRoot, err := digestOrDefault("control_root", cfg.ControlRoot, groth16.AllowedControlRoot())
		if err != nil {
			return nil, nil, err
		}
		controlID, err := digestOrDefault("bn254_control_id", cfg.BN254ControlID, groth16.BN254IdentityControlID())
		if err != nil {
			return nil, nil, err
		}

		vk, err := groth16.LoadVerifyingKey(cfg.VerifyingKeyPath)
		if err != nil {
			return nil, nil, fmt.Errorf("verifier %s: %w", programID, err)
		}
		verifier, err := groth16.NewVerifier(controlRoot, controlID, vk)
		if err != nil {
			return nil, nil, fmt.Errorf("verifier %s: %w", programID, err)
		}

		var authority *solana.PublicKey
		switch cfg.UpgradeAuthority {
		case "":
		case routerAuthority:
			authority = &routerAddress
		default:
			key, err := solana.PublicKeyFromBase58(cfg.UpgradeAuthority)
			if err != nil {
				return nil, nil, fmt.Errorf("verifier %s upgrade authority: %w", programID, err)
			}
			authority = &key
		}

		programs.Deploy(programID, verifier, authority)
		log.Infof("Loaded verifier program %s with selector %s", programID, verifier.Selector())

		switch {
		case cfg.Default && marked:
			return nil, nil, fmt.Errorf("verifier %s: only one verifier can be the default", programID)
		case cfg.Default:
			current, marked = verifier, true
		case !marked:
			current = verifier
		}
	}

	return programs, current, nil
}

// sealEncoder targets the current served verifier, falling back to the
// parameters built into the binary. Nil means callers must name a selector.
func sealEncoder(current *groth16.Verifier, log *logger.Logger) *client.Encoder {
	if current != nil {
		encoder := client.NewEncoder(current.Parameters())
		log.Infof("Seals without a selector are encoded for %s", encoder.Selector())
		return &encoder
	}

	encoder, err := client.DefaultEncoder()
	if err != nil {
		log.Warnf("No verifier configured and %v; seal encoding requires an explicit selector", err)
		return nil
	}
	return &encoder
}
