package rest

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
)

const (
	AuthorityHeader = "X-Authority"
	SignatureHeader = "X-Signature"
	TimestampHeader = "X-Timestamp"
	NonceHeader     = "X-Nonce"

	authorityKey = "authority"

	// MaxClockSkew bounds how far X-Timestamp may drift from the server clock.
	MaxClockSkew   = 5 * time.Minute
	seenNoncesSize = 16384
)

type Middleware struct {
	Handler gin.HandlerFunc
	Group   string
}

// NewMiddleware binds handler to a route group; "*" applies it to the whole engine.
func NewMiddleware(group string, handler gin.HandlerFunc) Middleware {
	return Middleware{
		Group:   group,
		Handler: handler,
	}
}

// SigningMessage is the byte string a caller signs: the request line, the
// timestamp and nonce headers, then the raw body.
func SigningMessage(method, path string, timestamp int64, nonce string, body []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n%s\n%d\n%s\n", method, path, timestamp, nonce)
	buf.Write(body)
	return buf.Bytes()
}

// SignedAuthorityMiddleware authenticates the caller as the Solana key in X-Authority.
// X-Signature must be the base58 ed25519 signature of SigningMessage by that key.
// A nonce is accepted once per authority while its timestamp is fresh.
// Requests without X-Authority pass through anonymously.
func SignedAuthorityMiddleware() gin.HandlerFunc {
	seen, err := lru.New(seenNoncesSize)
	if err != nil {
		panic(err)
	}

	return func(c *gin.Context) {
		header := c.GetHeader(AuthorityHeader)
		if header == "" {
			c.Next()
			return
		}

		authority, err := solana.PublicKeyFromBase58(header)
		if err != nil {
			unauthorized(c, "invalid authority: "+err.Error())
			return
		}

		signature, err := solana.SignatureFromBase58(c.GetHeader(SignatureHeader))
		if err != nil {
			unauthorized(c, "invalid signature: "+err.Error())
			return
		}

		timestamp, err := strconv.ParseInt(c.GetHeader(TimestampHeader), 10, 64)
		if err != nil {
			unauthorized(c, "invalid timestamp: "+err.Error())
			return
		}
		if skew := time.Since(time.Unix(timestamp, 0)); skew > MaxClockSkew || skew < -MaxClockSkew {
			unauthorized(c, "request timestamp outside the accepted window")
			return
		}

		nonce := c.GetHeader(NonceHeader)
		if nonce == "" {
			unauthorized(c, "missing nonce")
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, err = io.ReadAll(c.Request.Body)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		message := SigningMessage(c.Request.Method, c.Request.URL.Path, timestamp, nonce, body)
		if !signature.Verify(authority, message) {
			unauthorized(c, "signature does not match authority")
			return
		}

		if used, _ := seen.ContainsOrAdd(authority.String()+"/"+nonce, timestamp); used {
			unauthorized(c, "nonce already used")
			return
		}

		c.Set(authorityKey, authority)
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// Authority returns the caller authenticated by SignedAuthorityMiddleware.
func Authority(c *gin.Context) (solana.PublicKey, bool) {
	v, ok := c.Get(authorityKey)
	if !ok {
		return solana.PublicKey{}, false
	}
	pk, ok := v.(solana.PublicKey)
	return pk, ok
}

// SignRequest sets the authority, timestamp, nonce and signature headers on req
// for the given body.
func SignRequest(req *http.Request, key solana.PrivateKey, body []byte) error {
	timestamp := time.Now().Unix()
	nonce := uuid.NewString()

	sig, err := key.Sign(SigningMessage(req.Method, req.URL.Path, timestamp, nonce, body))
	if err != nil {
		return err
	}

	req.Header.Set(AuthorityHeader, key.PublicKey().String())
	req.Header.Set(TimestampHeader, strconv.FormatInt(timestamp, 10))
	req.Header.Set(NonceHeader, nonce)
	req.Header.Set(SignatureHeader, sig.String())
	return nil
}
