package actions_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/clariohq/clario/core/types"
	"github.com/clariohq/clario/services/actions"
)

var _ = Describe("Executor", func() {
	var (
		exec *actions.Executor
		ctx  context.Context
	)

	BeforeEach(func() {
		exec = actions.NewExecutor()
		ctx = context.Background()
	})

	It("fails unknown action types without panicking", func() {
		out := exec.Run(ctx, types.Action{Type: "teleport"})
		Expect(out.Success).To(BeFalse())
		Expect(out.Error).To(ContainSubstring("no handler"))
	})

	It("reports handler results", func() {
		exec.Register("ping", func(ctx context.Context, p types.ActionParams) (string, error) {
			return "pong", nil
		})
		out := exec.Run(ctx, types.Action{Type: "ping"})
		Expect(out.Success).To(BeTrue())
		Expect(out.Result).To(Equal("pong"))
	})

	It("keeps one failure from disturbing siblings", func() {
		exec.Register("ok", func(ctx context.Context, p types.ActionParams) (string, error) {
			return "fine", nil
		})
		exec.Register("boom", func(ctx context.Context, p types.ActionParams) (string, error) {
			return "", errors.New("kaput")
		})

		results := exec.RunAll(ctx, []types.Action{
			{Type: "ok"},
			{Type: "boom"},
			{Type: "ok"},
		})
		Expect(results).To(HaveLen(3))
		Expect(results[0].Success).To(BeTrue())
		Expect(results[1].Success).To(BeFalse())
		Expect(results[1].Error).To(Equal("kaput"))
		Expect(results[2].Success).To(BeTrue())
	})

	It("returns results in input order despite concurrency", func() {
		exec.Register("echo", func(ctx context.Context, p types.ActionParams) (string, error) {
			return p["n"].(string), nil
		})
		in := []types.Action{
			{Type: "echo", Params: types.ActionParams{"n": "a"}},
			{Type: "echo", Params: types.ActionParams{"n": "b"}},
			{Type: "echo", Params: types.ActionParams{"n": "c"}},
		}
		results := exec.RunAll(ctx, in)
		Expect([]string{results[0].Result, results[1].Result, results[2].Result}).To(Equal([]string{"a", "b", "c"}))
	})
})
