// Package actions executes the side effects decided for a generated
// response. Every handler is registered explicitly; an unknown action type is
// a programming error surfaced as a failed result, never a panic.
package actions

import (
	"context"
	"fmt"
	"sync"

	"github.com/mudler/xlog"

	"github.com/clariohq/clario/core/types"
)

// Handler runs one action and returns a human-readable result.
type Handler func(ctx context.Context, params types.ActionParams) (string, error)

type Executor struct {
	handlers map[string]Handler
}

func NewExecutor() *Executor {
	return &Executor{handlers: map[string]Handler{}}
}

func (e *Executor) Register(actionType string, h Handler) {
	e.handlers[actionType] = h
}

// Run executes a single action. Failures come back as data on the result.
func (e *Executor) Run(ctx context.Context, action types.Action) types.ExecutionResult {
	out := types.ExecutionResult{Type: action.Type}

	h, ok := e.handlers[action.Type]
	if !ok {
		out.Error = fmt.Sprintf("no handler registered for %q", action.Type)
		return out
	}

	result, err := h(ctx, action.Params)
	if err != nil {
		xlog.Warn("Action failed", "type", action.Type, "error", err)
		out.Error = err.Error()
		return out
	}
	out.Success = true
	out.Result = result
	return out
}

// RunAll executes actions concurrently. Results come back in input order so
// callers can report them alongside the decided priorities.
func (e *Executor) RunAll(ctx context.Context, actions []types.Action) []types.ExecutionResult {
	results := make([]types.ExecutionResult, len(actions))
	var wg sync.WaitGroup
	for i := range actions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.Run(ctx, actions[i])
		}(i)
	}
	wg.Wait()
	return results
}
