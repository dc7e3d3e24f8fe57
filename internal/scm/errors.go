package scm

import "fmt"

// ToolError reports a failed invocation of the external tool: launch
// failure, non-zero exit, or output that could not be framed into
// records. It is fatal for the build attempt that triggered it.
type ToolError struct {
	Tool string
	Op   string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Tool, e.Op, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// NewToolError wraps err as a tool invocation failure.
func NewToolError(tool, op string, err error) *ToolError {
	return &ToolError{Tool: tool, Op: op, Err: err}
}
