package priority

import (
	"fmt"
	"math"
	"strings"
)

// Rationale factor thresholds.
const (
	strongCustomerValue  = 0.7
	lowCustomerValue     = 0.3
	notableUnblockImpact = 0.5
	goodAvailability     = 0.7
	poorAvailability     = 0.3
	notableLearningValue = 0.6
)

// rationale assembles the human-readable explanation for a score. The text
// is templated and reproducible byte-for-byte from the same factor inputs.
func rationale(category Category, score float64, f Factors) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s priority (score %.2f)", strings.ToUpper(string(category)), score)

	switch {
	case f.CustomerValue >= strongCustomerValue:
		fmt.Fprintf(&b, "\n- strong customer value (%.2f)", f.CustomerValue)
	case f.CustomerValue <= lowCustomerValue:
		fmt.Fprintf(&b, "\n- low customer value (%.2f)", f.CustomerValue)
	}

	switch {
	case f.UnblockImpact >= notableUnblockImpact:
		estimated := int(math.Floor(f.UnblockImpact * unblockScale))
		fmt.Fprintf(&b, "\n- unblocks an estimated %d item(s)", estimated)
	case f.UnblockImpact == 0:
		b.WriteString("\n- does not unblock any other work")
	}

	switch {
	case f.WorkerAvailability >= goodAvailability:
		fmt.Fprintf(&b, "\n- workers are available to start (%.2f)", f.WorkerAvailability)
	case f.WorkerAvailability <= poorAvailability:
		fmt.Fprintf(&b, "\n- limited worker availability (%.2f)", f.WorkerAvailability)
	}

	if f.LearningValue >= notableLearningValue {
		fmt.Fprintf(&b, "\n- high learning value (%.2f)", f.LearningValue)
	}

	if f.BlockedPenalty > 0 {
		b.WriteString("\n- score halved: item is currently blocked")
	}

	return b.String()
}
