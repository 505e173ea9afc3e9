// Package toolcall imposes a textual tool-invocation convention on a model
// with no native tool-calling support, and parses the model's output back
// into a decision.
package toolcall

// ToolName is the single capability exposed to the model.
const ToolName = "execute_sql"

// Decision is the parsed outcome of one model response: either a plain
// reply or a request to run SQL. Consumers switch exhaustively.
type Decision interface {
	isDecision()
}

// Respond carries a plain-text reply for the user.
type Respond struct {
	Text string
}

// RunQuery carries a SQL statement the model wants executed, with the
// model's stated rationale.
type RunQuery struct {
	SQL       string
	Rationale string
}

func (Respond) isDecision()  {}
func (RunQuery) isDecision() {}
