// Package policy evaluates access policy for session operations.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decisions returned by Evaluate.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// Operations subject to policy.
const (
	OperationInvoke = "invoke"
	OperationRead   = "read"
	OperationDelete = "delete"
)

// Input is the policy evaluation input.
type Input struct {
	ActorID   string `json:"actor_id"`
	SessionID string `json:"session_id"`
	Operation string `json:"operation"`
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.session_policy.decision"),
		rego.Module("session_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks the session access policy and returns a decision.
// The policy is expected to define a default, so an empty result set is
// treated as allow.
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionAllow, nil
	}

	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return DecisionAllow, nil
}

// DefaultPolicy is the default policy content: operations without an actor
// identity are blocked, everything else is allowed.
const DefaultPolicy = `
package session_policy

default decision = "allow"

decision = "block" {
	input.actor_id == ""
}
`
