package api

import (
	"github.com/boundless-xyz/risc0-solana/pkg/rest"
)

const apiGroup = "v1"

func Routes(h *Handler) []rest.Route {
	return []rest.Route{
		rest.NewRoute(rest.POST, apiGroup, "router/initialize", h.Initialize),
		rest.NewRoute(rest.GET, apiGroup, "router", h.GetRouter),
		rest.NewRoute(rest.POST, apiGroup, "router/ownership/transfer", h.TransferOwnership),
		rest.NewRoute(rest.POST, apiGroup, "router/ownership/accept", h.AcceptOwnership),
		rest.NewRoute(rest.POST, apiGroup, "router/ownership/cancel", h.CancelTransfer),
		rest.NewRoute(rest.POST, apiGroup, "verifiers", h.AddVerifier),
		rest.NewRoute(rest.GET, apiGroup, "verifiers", h.ListVerifiers),
		rest.NewRoute(rest.GET, apiGroup, "verifiers/:selector", h.GetVerifier),
		rest.NewRoute(rest.DELETE, apiGroup, "verifiers/:selector", h.RemoveVerifier),
		rest.NewRoute(rest.POST, apiGroup, "verify", h.Verify),
		rest.NewRoute(rest.POST, apiGroup, "estop/owner", h.EstopByOwner),
		rest.NewRoute(rest.POST, apiGroup, "estop/proof", h.EstopWithProof),
		rest.NewRoute(rest.GET, apiGroup, "events", h.ListEvents),
		rest.NewRoute(rest.POST, apiGroup, "seal/encode", h.EncodeSeal),
		rest.NewRoute(rest.GET, apiGroup, "programs", h.ListPrograms),
	}
}

func Middlewares() []rest.Middleware {
	return []rest.Middleware{
		rest.NewMiddleware(apiGroup, rest.SignedAuthorityMiddleware()),
	}
}
