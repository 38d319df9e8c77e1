package agent

import (
	"encoding/json"

	"github.com/complianceops/regwatch/internal/a2a"
	"github.com/complianceops/regwatch/internal/fedreg"
)

// DefaultDaysBack is the look-back span assumed when a task carries no
// explicit value.
const DefaultDaysBack = 30

// TaskParams are the structured parameters that accompany a delegate
// instruction. They ride in a JSON data part alongside the
// natural-language text part.
type TaskParams struct {
	Agency   string `json:"agency"`
	DaysBack int    `json:"daysBack"`
}

// Normalize applies defaults and input coercion: an unknown agency string
// becomes BOTH and a non-positive look-back becomes DefaultDaysBack for a
// missing value or 1 for an explicit non-positive one.
func (p TaskParams) Normalize() (fedreg.Agency, int) {
	agency := fedreg.ParseAgency(p.Agency)

	days := p.DaysBack
	switch {
	case days == 0:
		days = DefaultDaysBack
	case days < 0:
		days = 1
	}
	return agency, days
}

// ParamsFromMessage extracts TaskParams from the first data part of the
// message. A message with no data part yields zero params, which
// Normalize turns into the BOTH/DefaultDaysBack defaults.
func ParamsFromMessage(msg a2a.Message) TaskParams {
	var params TaskParams
	for _, part := range msg.Parts {
		if len(part.Data) == 0 {
			continue
		}
		if err := json.Unmarshal(part.Data, &params); err == nil {
			break
		}
	}
	return params
}

// InstructionFromMessage returns the concatenated text parts of the
// message: the natural-language side of the delegate task.
func InstructionFromMessage(msg a2a.Message) string {
	var text string
	for _, part := range msg.Parts {
		if part.Text == "" {
			continue
		}
		if text != "" {
			text += "\n"
		}
		text += part.Text
	}
	return text
}
