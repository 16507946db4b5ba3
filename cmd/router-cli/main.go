package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/boundless-xyz/risc0-solana/internal/client"
	"github.com/boundless-xyz/risc0-solana/internal/groth16"
	"github.com/boundless-xyz/risc0-solana/internal/seal"
	"github.com/boundless-xyz/risc0-solana/pkg/rest"
	"github.com/boundless-xyz/risc0-solana/pkg/utilities"
	"github.com/gagliardetto/solana-go"
)

const defaultBase = "http://localhost:9000/v1"

type cli struct {
	base   string
	key    solana.PrivateKey
	client *http.Client
	out    io.Writer
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	if err := utilities.LoadEnvironment(); err != nil {
		fmt.Fprintln(os.Stderr, "env:", err)
		os.Exit(1)
	}

	c := &cli{
		base:   utilities.GetEnvOrDefault("API_BASE", defaultBase),
		client: http.DefaultClient,
		out:    os.Stdout,
	}
	if path := os.Getenv("OWNER_KEYPAIR_PATH"); path != "" {
		key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "keypair:", err)
			os.Exit(1)
		}
		c.key = key
	}

	if err := c.run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			usage()
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid usage")

func (c *cli) run(cmd string, args []string) error {
	switch cmd {
	// Router
	case "init":
		return c.signed(http.MethodPost, "/router/initialize", nil)
	case "show":
		return c.anonymous(http.MethodGet, "/router", nil)
	case "transfer":
		owner, err := arg(args, 0)
		if err != nil {
			return err
		}
		return c.signed(http.MethodPost, "/router/ownership/transfer", map[string]string{"new_owner": owner})
	case "accept":
		return c.signed(http.MethodPost, "/router/ownership/accept", nil)
	case "cancel":
		return c.signed(http.MethodPost, "/router/ownership/cancel", nil)

	// Verifiers
	case "add":
		selector, err := arg(args, 0)
		if err != nil {
			return err
		}
		verifier, err := arg(args, 1)
		if err != nil {
			return err
		}
		return c.signed(http.MethodPost, "/verifiers", map[string]string{"selector": selector, "verifier": verifier})
	case "list":
		return c.anonymous(http.MethodGet, "/verifiers", nil)
	case "programs":
		return c.anonymous(http.MethodGet, "/programs", nil)
	case "get":
		selector, err := arg(args, 0)
		if err != nil {
			return err
		}
		return c.anonymous(http.MethodGet, "/verifiers/"+selector, nil)
	case "remove":
		selector, err := arg(args, 0)
		if err != nil {
			return err
		}
		return c.signed(http.MethodDelete, "/verifiers/"+selector, nil)

	// Proofs
	case "verify":
		fs := flag.NewFlagSet("verify", flag.ContinueOnError)
		sealHex := fs.String("seal", "", "hex encoded seal")
		image := fs.String("image", "", "hex encoded image id")
		journal := fs.String("journal", "", "hex encoded journal digest")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		return c.anonymous(http.MethodPost, "/verify", map[string]string{
			"seal": *sealHex, "image_id": *image, "journal_digest": *journal,
		})
	case "encode-seal":
		fs := flag.NewFlagSet("encode-seal", flag.ContinueOnError)
		proof := fs.String("proof", "", "hex encoded raw proof")
		selector := fs.String("selector", "", "selector, defaults to the built in verifier")
		local := fs.Bool("local", false, "encode without contacting the router")
		vkPath := fs.String("vk", "", "with -local, verifying key whose parameters pick the selector")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		if *local {
			return c.encodeLocal(*proof, *selector, *vkPath)
		}
		return c.anonymous(http.MethodPost, "/seal/encode", map[string]string{"proof": *proof, "selector": *selector})

	// Emergency stop
	case "estop":
		fs := flag.NewFlagSet("estop", flag.ContinueOnError)
		verifier := fs.String("verifier", "", "only stop if the entry still points at this program")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		selector, err := arg(fs.Args(), 0)
		if err != nil {
			return err
		}
		return c.signed(http.MethodPost, "/estop/owner", map[string]string{"selector": selector, "verifier": *verifier})
	case "estop-proof":
		fs := flag.NewFlagSet("estop-proof", flag.ContinueOnError)
		proof := fs.String("proof", "", "hex encoded proof accepted for the null claim")
		verifier := fs.String("verifier", "", "only stop if the entry still points at this program")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		selector, err := arg(fs.Args(), 0)
		if err != nil {
			return err
		}
		return c.signed(http.MethodPost, "/estop/proof", map[string]string{"selector": selector, "proof": *proof, "verifier": *verifier})
	case "events":
		return c.anonymous(http.MethodGet, "/events", nil)

	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func usage() {
	fmt.Println(`Usage: router-cli <command> [options]

Commands:
  init                                         POST   /router/initialize
  show                                         GET    /router
  transfer     <new_owner>                     POST   /router/ownership/transfer
  accept                                       POST   /router/ownership/accept
  cancel                                       POST   /router/ownership/cancel

  add          <selector> <verifier_program>   POST   /verifiers
  list                                         GET    /verifiers
  programs                                     GET    /programs
  get          <selector>                      GET    /verifiers/:selector
  remove       <selector>                      DELETE /verifiers/:selector

  verify       -seal <hex> -image <hex> -journal <hex>   POST /verify
  encode-seal  -proof <hex> [-selector <hex>]            POST /seal/encode
               -local [-selector <hex> | -vk <file>]     encode offline

  estop        [-verifier <key>] <selector>              POST /estop/owner
  estop-proof  -proof <hex> [-verifier <key>] <selector> POST /estop/proof
  events                                       GET    /events

Environment:
  API_BASE             override default http://localhost:9000/v1
  OWNER_KEYPAIR_PATH   solana-keygen file used to sign requests`)
}

func (c *cli) encodeLocal(proofHex, selectorHex, vkPath string) error {
	raw, err := utilities.DecodeHexFixed(proofHex, seal.RawProofSize)
	if err != nil {
		return fmt.Errorf("proof: %w", err)
	}

	var s seal.Seal
	switch {
	case selectorHex != "":
		selector, err := seal.ParseSelector(selectorHex)
		if err != nil {
			return fmt.Errorf("selector: %w", err)
		}
		s = client.EncodeSealWithSelector([seal.RawProofSize]byte(raw), selector)
	case vkPath != "":
		vk, err := groth16.LoadVerifyingKey(vkPath)
		if err != nil {
			return fmt.Errorf("vk: %w", err)
		}
		s = client.NewEncoder(groth16.DefaultParametersFor(vk)).EncodeSeal([seal.RawProofSize]byte(raw))
	default:
		encoder, err := client.DefaultEncoder()
		if err != nil {
			return fmt.Errorf("%w: pass -selector or -vk", err)
		}
		s = encoder.EncodeSeal([seal.RawProofSize]byte(raw))
	}

	data, err := s.MarshalBorsh()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "selector: %s\nseal:     %s\n", s.Selector, hex.EncodeToString(data))
	return nil
}

func arg(args []string, idx int) (string, error) {
	if len(args) <= idx {
		return "", fmt.Errorf("missing argument %d: %w", idx+1, errUsage)
	}
	return args[idx], nil
}

func (c *cli) anonymous(method, path string, body interface{}) error {
	return c.do(method, path, body, false)
}

func (c *cli) signed(method, path string, body interface{}) error {
	if c.key == nil {
		return errors.New("OWNER_KEYPAIR_PATH must be set for this command")
	}
	return c.do(method, path, body, true)
}

func (c *cli) do(method, path string, body interface{}, sign bool) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("req: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sign {
		if err := rest.SignRequest(req, c.key, payload); err != nil {
			return fmt.Errorf("sign: %w", err)
		}
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do: %w", err)
	}
	defer res.Body.Close()

	fmt.Fprintf(c.out, "→ %s %s\n", method, req.URL)
	fmt.Fprintf(c.out, "← %d %s\n\n", res.StatusCode, http.StatusText(res.StatusCode))
	if _, err := io.Copy(c.out, res.Body); err != nil {
		return err
	}
	fmt.Fprintln(c.out)
	return nil
}
