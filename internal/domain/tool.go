package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// ParamType is the JSON-schema primitive a tool parameter accepts.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamBoolean ParamType = "boolean"
	ParamInteger ParamType = "integer"
	ParamArray   ParamType = "array"
)

// ParamSpec describes one tool parameter.
type ParamSpec struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Required    bool      `json:"required"`
	Description string    `json:"description"`
	// Items names the element type for array parameters.
	Items ParamType `json:"items,omitempty"`
}

// Params is the argument mapping a tool handler receives. Accessors are
// lenient about JSON's habit of delivering numbers as float64 and lists as
// []any.
type Params map[string]any

func (p Params) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

func (p Params) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	default:
		return false
	}
}

func (p Params) Int(key string) (int, bool) {
	switch v := p[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func (p Params) StringSlice(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	default:
		return nil
	}
}

func (p Params) Int64Slice(key string) []int64 {
	switch v := p[key].(type) {
	case []int64:
		return v
	case []any:
		out := make([]int64, 0, len(v))
		for _, item := range v {
			switch n := item.(type) {
			case float64:
				out = append(out, int64(n))
			case int:
				out = append(out, int64(n))
			case int64:
				out = append(out, n)
			}
		}
		return out
	default:
		return nil
	}
}

// ToolHandler executes one tool invocation. Handlers return a ToolResult on
// every path; Go errors never cross the tool contract.
type ToolHandler func(ctx context.Context, params Params) ToolResult

// ToolDescriptor is one registered tool. Descriptors are immutable once
// handed to the registry.
type ToolDescriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []ParamSpec `json:"params"`
	ReadOnly    bool        `json:"read_only"`
	Handler     ToolHandler `json:"-"`
}

// ToolResult is the universal tool contract: success flag, payload on
// success, message on failure, and the tool name on both so agent callers
// can correlate. Tools return this shape rather than raising.
type ToolResult struct {
	Success  bool           `json:"success"`
	Data     map[string]any `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
	ToolName string         `json:"tool_name"`
}

// OK builds a success result.
func OK(tool string, data map[string]any) ToolResult {
	return ToolResult{Success: true, Data: data, ToolName: tool}
}

// Fail builds a failure result.
func Fail(tool, msg string) ToolResult {
	return ToolResult{Success: false, Error: msg, ToolName: tool}
}

// Failf builds a formatted failure result.
func Failf(tool, format string, args ...any) ToolResult {
	return Fail(tool, fmt.Sprintf(format, args...))
}

// FailErr classifies err onto the flat error taxonomy and builds a failure
// result from it.
func FailErr(tool string, err error) ToolResult {
	if err == nil {
		return Fail(tool, "unknown error")
	}
	if code, ok := CodeFrom(err); ok {
		return Failf(tool, "%s: %s", code, err.Error())
	}
	return Fail(tool, err.Error())
}

// RequireString fetches a required string parameter, returning a structured
// failure when it is absent or blank.
func RequireString(tool string, params Params, key string) (string, ToolResult, bool) {
	v, ok := params.String(key)
	if !ok {
		return "", Failf(tool, "missing required parameter: %s", key), false
	}
	return v, ToolResult{}, true
}
