package rpc

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"daocore/bidescrow"
	"daocore/daoerrors"
	"daocore/onboarding"
	"daocore/types"
	"daocore/voting"
)

func parseUintParam(w http.ResponseWriter, req *http.Request, name string) (uint64, bool) {
	raw := chi.URLParam(req, name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeError(w, daoerrors.New(daoerrors.CodeUnspecified, "malformed %s %q", name, raw))
		return 0, false
	}
	return v, true
}

type jobOfferRequest struct {
	Poster            string `json:"poster"`
	ExpectedTimeframe uint64 `json:"expectedTimeframe"`
	MaxBudget         string `json:"maxBudget"`
	AttachedCSPR      string `json:"attachedCspr"`
}

func postJobOffer(eng *bidescrow.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body jobOfferRequest
		if !decodeJSON(w, req, &body) {
			return
		}
		poster, ok := decodeAddress(w, body.Poster)
		if !ok {
			return
		}
		maxBudget, ok := decodeBalance(w, body.MaxBudget)
		if !ok {
			return
		}
		attached, ok := decodeBalance(w, body.AttachedCSPR)
		if !ok {
			return
		}
		offer, err := eng.PostJobOffer(poster, body.ExpectedTimeframe, maxBudget, attached)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, offer)
	}
}

type bidRequest struct {
	Worker            string `json:"worker"`
	ProposedTimeframe uint64 `json:"proposedTimeframe"`
	ProposedPayment   string `json:"proposedPayment"`
	ReputationStake   string `json:"reputationStake"`
	CSPRStake         string `json:"csprStake"`
	Onboard           bool   `json:"onboard"`
}

func submitBid(eng *bidescrow.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		offerId, ok := parseUintParam(w, req, "offerId")
		if !ok {
			return
		}
		var body bidRequest
		if !decodeJSON(w, req, &body) {
			return
		}
		worker, ok := decodeAddress(w, body.Worker)
		if !ok {
			return
		}
		payment, ok := decodeBalance(w, body.ProposedPayment)
		if !ok {
			return
		}
		repStake, ok := decodeBalance(w, body.ReputationStake)
		if !ok {
			return
		}
		csprStake, ok := decodeBalance(w, body.CSPRStake)
		if !ok {
			return
		}
		bid, err := eng.SubmitBid(types.JobOfferId(offerId), worker, body.ProposedTimeframe, payment, repStake, csprStake, body.Onboard)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, bid)
	}
}

type pickBidRequest struct {
	Caller       string `json:"caller"`
	AttachedCSPR string `json:"attachedCspr"`
}

func pickBid(eng *bidescrow.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		offerId, ok := parseUintParam(w, req, "offerId")
		if !ok {
			return
		}
		bidId, ok := parseUintParam(w, req, "bidId")
		if !ok {
			return
		}
		var body pickBidRequest
		if !decodeJSON(w, req, &body) {
			return
		}
		caller, ok := decodeAddress(w, body.Caller)
		if !ok {
			return
		}
		attached, ok := decodeBalance(w, body.AttachedCSPR)
		if !ok {
			return
		}
		job, err := eng.PickBid(types.JobOfferId(offerId), types.BidId(bidId), caller, attached)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, job)
	}
}

type jobProofRequest struct {
	Caller string `json:"caller"`
	Proof  []byte `json:"proof"`
}

func submitJobProof(eng *bidescrow.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		jobId, ok := parseUintParam(w, req, "jobId")
		if !ok {
			return
		}
		var body jobProofRequest
		if !decodeJSON(w, req, &body) {
			return
		}
		caller, ok := decodeAddress(w, body.Caller)
		if !ok {
			return
		}
		if err := eng.SubmitJobProof(types.JobId(jobId), caller, body.Proof); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "submitted"})
	}
}

func finishJobVoting(eng *bidescrow.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		jobId, ok := parseUintParam(w, req, "jobId")
		if !ok {
			return
		}
		summary, err := eng.FinishJobVoting(types.JobId(jobId))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

type onboardingRequest struct {
	Requester      string `json:"requester"`
	ReasonDocument string `json:"reasonDocument"`
	AttachedCSPR   string `json:"attachedCspr"`
}

func createOnboardingRequest(eng *onboarding.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body onboardingRequest
		if !decodeJSON(w, req, &body) {
			return
		}
		requester, ok := decodeAddress(w, body.Requester)
		if !ok {
			return
		}
		attached, ok := decodeBalance(w, body.AttachedCSPR)
		if !ok {
			return
		}
		v, err := eng.CreateVoting(requester, body.ReasonDocument, attached)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, v)
	}
}

func finishOnboardingRequest(eng *onboarding.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		votingId, ok := parseUintParam(w, req, "votingId")
		if !ok {
			return
		}
		summary, err := eng.FinishVoting(types.VotingId(votingId))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

type voteRequest struct {
	Voter      string `json:"voter"`
	VotingType string `json:"votingType"`
	Choice     string `json:"choice"`
	Stake      string `json:"stake"`
}

func castVote(eng *voting.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		votingId, ok := parseUintParam(w, req, "votingId")
		if !ok {
			return
		}
		var body voteRequest
		if !decodeJSON(w, req, &body) {
			return
		}
		voter, ok := decodeAddress(w, body.Voter)
		if !ok {
			return
		}
		stake, ok := decodeBalance(w, body.Stake)
		if !ok {
			return
		}

		var votingType types.VotingType
		switch body.VotingType {
		case "informal":
			votingType = types.VotingTypeInformal
		case "formal":
			votingType = types.VotingTypeFormal
		default:
			writeError(w, daoerrors.New(daoerrors.CodeUnspecified, "unknown votingType %q", body.VotingType))
			return
		}

		var choice types.Choice
		switch body.Choice {
		case "inFavor":
			choice = types.ChoiceInFavor
		case "against":
			choice = types.ChoiceAgainst
		default:
			writeError(w, daoerrors.New(daoerrors.CodeUnspecified, "unknown choice %q", body.Choice))
			return
		}

		if err := eng.Vote(voter, types.VotingId(votingId), votingType, choice, stake); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cast"})
	}
}
