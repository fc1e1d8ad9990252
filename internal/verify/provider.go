package verify

import "context"

type DecisionOutcome string

const (
	OutcomeApproved          DecisionOutcome = "APPROVED"
	OutcomeRejected          DecisionOutcome = "REJECTED"
	OutcomeNeedsReview       DecisionOutcome = "NEEDS_REVIEW"
	OutcomeInvalidSubmission DecisionOutcome = "INVALID_SUBMISSION"
)

func (o DecisionOutcome) valid() bool {
	switch o {
	case OutcomeApproved, OutcomeRejected, OutcomeNeedsReview, OutcomeInvalidSubmission:
		return true
	}
	return false
}

// DecisionRequest carries everything a judge needs to assess one proof.
// Model optionally overrides the provider's default model per game.
type DecisionRequest struct {
	Objective             string
	Action                string
	Reward                string
	Failure               string
	MasterPrompt          string
	CheckpointDescription string
	Proof                 string
	SampleApproved        []string
	SampleRejected        []string
	Model                 string
}

type Decision struct {
	Outcome    DecisionOutcome
	Reasoning  string
	Confidence float64
}

// Provider is the external AI judge. Any transport or parse failure must be
// returned as an error, never mapped to a rejection; the workflow degrades
// errors to a pending human review.
type Provider interface {
	Decide(ctx context.Context, req DecisionRequest) (Decision, error)
}
