package agent

import (
	"errors"
	"fmt"
)

// Operation tags the kind of statement being generated. Fallback text is
// dispatched on this tag, never by inspecting the prompt.
type Operation string

const (
	OpOpening    Operation = "opening"
	OpRebuttal   Operation = "rebuttal"
	OpQuestion   Operation = "question"
	OpAnswer     Operation = "answer"
	OpEvaluation Operation = "evaluation"
	OpFollowup   Operation = "followup"
	OpClosing    Operation = "closing"
)

var errEmptyResponse = errors.New("empty response from provider")

// fallback returns role/topic-aware canned text for an operation whose
// generation exhausted all retries.
func (d *Debater) fallback(op Operation) string {
	switch op {
	case OpOpening:
		return fmt.Sprintf("As %s, I strongly support the %s position on %s. The evidence clearly demonstrates the validity of this stance, and I will present compelling arguments to support this view.",
			d.Name, d.Role, d.Topic)
	case OpRebuttal:
		return fmt.Sprintf("The opposing arguments fail to address the core issues of %s. From the %s perspective, the evidence points to a different conclusion.",
			d.Topic, d.Role)
	case OpQuestion:
		return fmt.Sprintf("How do you reconcile your position with the evidence regarding %s?", d.Topic)
	case OpAnswer:
		return fmt.Sprintf("From the %s standpoint, the answer is clear based on the evidence.", d.Role)
	case OpEvaluation:
		return "Directness: 3/5, Logic: 3/5, Evasion: No\nThe response addressed the question adequately."
	case OpFollowup:
		return "That raises additional points worth exploring further."
	case OpClosing:
		return fmt.Sprintf("In conclusion, the %s position on %s is well-founded and supported by sound reasoning.", d.Role, d.Topic)
	default:
		return fmt.Sprintf("I maintain my %s position on %s based on the evidence presented.", d.Role, d.Topic)
	}
}
