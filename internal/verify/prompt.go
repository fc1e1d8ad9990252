package verify

import (
	"fmt"
	"strings"
)

const judgeSystemPrompt = `You are the checkpoint judge for a commitment challenge game.
Players stake real money and submit proof that they performed the required
action for a checkpoint. Assess only whether the submitted proof credibly
shows the checkpoint action was done.

Respond with a single JSON object and nothing else:
{"decision": "...", "reasoning": "...", "confidence": 0.0}

decision must be exactly one of:
  APPROVED            proof credibly shows the action was done
  REJECTED            proof shows the action was not done or contradicts it
  NEEDS_REVIEW        proof is ambiguous; a human should decide
  INVALID_SUBMISSION  content is not a proof attempt at all (spam, empty, abuse)
confidence is your certainty in the decision, between 0 and 1.`

func buildMessages(req DecisionRequest) []chatMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Game objective: %s\n", req.Objective)
	fmt.Fprintf(&b, "Required action: %s\n", req.Action)
	if req.Reward != "" {
		fmt.Fprintf(&b, "On success: %s\n", req.Reward)
	}
	if req.Failure != "" {
		fmt.Fprintf(&b, "On failure: %s\n", req.Failure)
	}
	fmt.Fprintf(&b, "Checkpoint: %s\n", req.CheckpointDescription)
	if req.MasterPrompt != "" {
		fmt.Fprintf(&b, "\nGame master guidance:\n%s\n", req.MasterPrompt)
	}
	if len(req.SampleApproved) > 0 {
		b.WriteString("\nExamples of proof that should be APPROVED:\n")
		for _, s := range req.SampleApproved {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	if len(req.SampleRejected) > 0 {
		b.WriteString("\nExamples of proof that should be REJECTED:\n")
		for _, s := range req.SampleRejected {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	fmt.Fprintf(&b, "\nSubmitted proof:\n%s\n", req.Proof)

	return []chatMessage{
		{Role: "system", Content: judgeSystemPrompt},
		{Role: "user", Content: b.String()},
	}
}
