package channels_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/clariohq/clario/core/types"
	"github.com/clariohq/clario/pkg/channels"
)

type fakeSender struct {
	name string
	sent []string
	fail error
}

func (f *fakeSender) Name() string { return f.name }

func (f *fakeSender) Send(ctx context.Context, recipient, text string) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, recipient+": "+text)
	return nil
}

var _ = Describe("Registry", func() {
	It("routes by channel name", func() {
		tg := &fakeSender{name: "telegram"}
		reg := channels.NewRegistry(tg)

		Expect(reg.Deliver(context.Background(), "telegram", "12345", "hola")).To(Succeed())
		Expect(tg.sent).To(ConsistOf("12345: hola"))
	})

	It("fails with a capability error for unknown channels", func() {
		reg := channels.NewRegistry()
		err := reg.Deliver(context.Background(), "pigeon", "x", "y")
		Expect(err).To(MatchError(types.ErrCapability))
	})

	It("wraps sender failures as capability errors", func() {
		broken := &fakeSender{name: "slack", fail: context.DeadlineExceeded}
		reg := channels.NewRegistry(broken)

		err := reg.Deliver(context.Background(), "slack", "C1", "hi")
		Expect(err).To(MatchError(types.ErrCapability))
	})

	It("strips markup before sending", func() {
		tg := &fakeSender{name: "telegram"}
		reg := channels.NewRegistry(tg)

		Expect(reg.Deliver(context.Background(), "telegram", "1", "<p>hola mundo</p>")).To(Succeed())
		Expect(tg.sent).To(ConsistOf("1: hola mundo"))
	})
})
