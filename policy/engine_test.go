package policy

import (
	"context"
	"testing"
)

func TestDefaultPolicyAllowsNormalOperations(t *testing.T) {
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	for _, op := range []string{OperationInvoke, OperationRead, OperationDelete} {
		decision, err := engine.Evaluate(context.Background(), Input{
			ActorID: "actor-1", SessionID: "s1", Operation: op,
		})
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if decision != DecisionAllow {
			t.Fatalf("operation %s: decision = %q", op, decision)
		}
	}
}

func TestDefaultPolicyBlocksAnonymousActor(t *testing.T) {
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	decision, err := engine.Evaluate(context.Background(), Input{
		ActorID: "", SessionID: "s1", Operation: OperationDelete,
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != DecisionBlock {
		t.Fatalf("decision = %q, want block", decision)
	}
}

func TestCustomPolicy(t *testing.T) {
	const content = `
package session_policy

default decision = "allow"

decision = "block" {
	input.operation == "delete"
	input.actor_id == "readonly"
}
`
	engine, err := NewEngine(context.Background(), content)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	decision, err := engine.Evaluate(context.Background(), Input{
		ActorID: "readonly", SessionID: "s1", Operation: OperationDelete,
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != DecisionBlock {
		t.Fatalf("decision = %q, want block", decision)
	}
}
