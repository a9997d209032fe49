// Package rpc implements a go-chi JSON facade over the Voting Engine, the
// Bid-Escrow Workflow and the Onboarding Workflow (SPEC_FULL.md §5's "rpc"
// module) — the read/write API surface for programmatic callers named
// there, not an operator CLI. Grounded on the teacher's
// gateway/routes.New (chi.NewRouter plus a per-domain route group) and
// services/otc-gateway/server's JSON encode/decode idiom; request
// correlation follows the teacher's gateway middleware pattern of tagging
// every request with an id: the caller's X-Request-Id header is echoed
// when present, and one is minted with google/uuid otherwise.
package rpc

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"daocore/bidescrow"
	"daocore/daoerrors"
	"daocore/onboarding"
	"daocore/types"
	"daocore/voting"
)

// Dependencies are the engines the facade exposes over HTTP.
type Dependencies struct {
	Voting     *voting.Engine
	Bidescrow  *bidescrow.Engine
	Onboarding *onboarding.Engine
}

// New builds the facade's http.Handler.
func New(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestID)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/bid-escrow", func(r chi.Router) {
		r.Post("/offers", postJobOffer(deps.Bidescrow))
		r.Post("/offers/{offerId}/bids", submitBid(deps.Bidescrow))
		r.Post("/offers/{offerId}/bids/{bidId}/pick", pickBid(deps.Bidescrow))
		r.Post("/jobs/{jobId}/proof", submitJobProof(deps.Bidescrow))
		r.Post("/jobs/{jobId}/finish-voting", finishJobVoting(deps.Bidescrow))
	})

	r.Route("/onboarding", func(r chi.Router) {
		r.Post("/requests", createOnboardingRequest(deps.Onboarding))
		r.Post("/requests/{votingId}/finish", finishOnboardingRequest(deps.Onboarding))
	})

	r.Route("/voting", func(r chi.Router) {
		r.Post("/{votingId}/vote", castVote(deps.Voting))
	})

	return r
}

// requestID tags every response with an X-Request-Id, echoing the caller's
// own id when supplied so upstream proxies can correlate logs end to end.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, req)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a daoerrors.Error to 400 (a rejected precondition) and
// anything else to 500, matching the failure model's atomic-abort contract
// (spec §4.2): a 4xx response here always means no mutation was committed.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var derr *daoerrors.Error
	if errors.As(err, &derr) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeAddress(w http.ResponseWriter, s string) (types.Address, bool) {
	addr, err := types.DecodeAddress(s)
	if err != nil {
		writeError(w, daoerrors.Wrap(daoerrors.CodeUnspecified, err))
		return types.Address{}, false
	}
	return addr, true
}

func decodeBalance(w http.ResponseWriter, s string) (types.Balance, bool) {
	if s == "" {
		return types.Zero, true
	}
	bal, err := types.ParseBalance(s)
	if err != nil {
		writeError(w, daoerrors.Wrap(daoerrors.CodeUnspecified, err))
		return types.Balance{}, false
	}
	return bal, true
}

func decodeJSON(w http.ResponseWriter, req *http.Request, v any) bool {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		writeError(w, daoerrors.Wrap(daoerrors.CodeUnspecified, err))
		return false
	}
	return true
}
