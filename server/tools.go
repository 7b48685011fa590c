package server

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/njchilds90/equationshift"
	"github.com/njchilds90/equationshift/cas"
	"github.com/njchilds90/equationshift/token"
)

// ============================================================
// Stateless tool interface
// ============================================================

var knownTools = map[string]struct{}{
	"simplify": {}, "expand": {}, "collapse_signs": {}, "degree": {},
	"solve": {}, "validate": {}, "tokens": {}, "mcp_spec": {},
}

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCall runs one stateless tool. Failures are reported in the
// response, never as a Go error.
func HandleToolCall(req ToolRequest) ToolResponse {
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("invalid type for param %s", key)
		}
		return s, nil
	}
	getBool := func(key string, def bool) bool {
		if b, ok := req.Params[key].(bool); ok {
			return b
		}
		return def
	}
	getEquation := func() (string, string, string, error) {
		left, err := getString("left")
		if err != nil {
			return "", "", "", err
		}
		right, err := getString("right")
		if err != nil {
			return "", "", "", err
		}
		target, err := getString("target")
		if err != nil {
			return "", "", "", err
		}
		return left, right, target, nil
	}
	respondText := func(s string, err error) ToolResponse {
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: s, String: s}
	}

	switch req.Tool {
	case "simplify":
		expr, err := getString("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respondText(cas.SimplifyText(expr))

	case "expand":
		expr, err := getString("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		e, err := cas.Parse(expr)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respondText(cas.CollapseSigns(cas.Expand(e).String()), nil)

	case "collapse_signs":
		expr, err := getString("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respondText(cas.CollapseSigns(expr), nil)

	case "degree":
		expr, err := getString("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		e, err := cas.Parse(expr)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		d := cas.Degree(cas.Expand(e), v)
		return ToolResponse{Result: d, String: fmt.Sprint(d)}

	case "solve":
		left, right, target, err := getEquation()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		roots, err := cas.SolveText(left, right, target)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: roots, String: strings.Join(roots, ", ")}

	case "validate":
		left, right, target, err := getEquation()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		msg := equationshift.Validate(left, right, target, equationshift.DefaultConfig())
		return ToolResponse{Result: map[string]interface{}{"valid": msg == "", "message": msg}, String: msg}

	case "tokens":
		expr, err := getString("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		seq, err := token.Parse(expr, token.Options{
			GroupTokens:       getBool("group_tokens", false),
			PrettifyFractions: getBool("prettify_fractions", false),
		})
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: seq.Elements(), String: seq.Text()}

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec()}

	default:
		return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
	}
}

// MCPToolSpec describes the tools for agent registration.
func MCPToolSpec() string {
	eq := map[string]string{"left": "string", "right": "string", "target": "string"}
	tools := []map[string]interface{}{
		ts("simplify", "Simplify an expression and distribute products over sums", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("expand", "Multiply out products and small integer powers", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("collapse_signs", "Rewrite +- and -+ to -", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("degree", "Polynomial degree in variable", []string{"expr", "var"}, map[string]string{"expr": "string", "var": "string"}),
		ts("solve", "Solve left=right for target", []string{"left", "right", "target"}, eq),
		ts("validate", "Check a start equation and return the validation message", []string{"left", "right", "target"}, eq),
		ts("tokens", "Lay an expression out as draggable tokens", []string{"expr"}, map[string]string{"expr": "string", "group_tokens": "boolean", "prettify_fractions": "boolean"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
