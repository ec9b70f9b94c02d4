package analyze

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bkyoung/sectriage/internal/domain"
)

// SystemPrompt pins the output contract: a single JSON object with exactly
// the four verdict keys. Everything else about the model's reasoning is left
// free; only the shape of the answer is fixed.
const SystemPrompt = `You are a security engineer reviewing automated security-scanner findings to filter out false positives.

For each finding you are given, decide whether it is a true positive worth keeping or a false positive to exclude. Typical false positives include: findings in test-only code, intentional behavior the scanner misread, dead or unreachable code, and hardened patterns the scanner does not recognize.

Respond with a single JSON object and nothing else. The object must contain exactly these keys:

{
  "confidence_score": <number from 1 to 10>,
  "keep_finding": <true or false>,
  "exclusion_reason": "<why the finding was excluded; empty string if kept>",
  "justification": "<explanation of your decision>"
}`

// BuildPrompt renders the analysis prompt for one finding. The rendering is
// deterministic: finding and PR-context fields serialize with sorted keys, PR
// context appears only when present, and custom instructions are appended
// verbatim as an additional directive, never interpreted here.
func BuildPrompt(finding domain.Finding, prContext domain.PRContext, customInstructions string) string {
	var sb strings.Builder

	sb.WriteString("Analyze the following security finding and decide whether it is a true positive.\n\n")

	sb.WriteString("## Finding\n\n")
	sb.WriteString(renderMapping(map[string]any(finding)))
	sb.WriteString("\n")

	if len(prContext) > 0 {
		sb.WriteString("\n## Pull Request Context\n\n")
		sb.WriteString(renderMapping(map[string]any(prContext)))
		sb.WriteString("\n")
	}

	if customInstructions != "" {
		sb.WriteString("\n## Additional Filtering Instructions\n\n")
		sb.WriteString(customInstructions)
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderMapping serializes an opaque mapping as indented JSON. encoding/json
// sorts map keys, which is what makes the prompt deterministic.
func renderMapping(m map[string]any) string {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", m)
	}
	return string(data)
}
