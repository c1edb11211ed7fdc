// Package channels delivers outbound messages to external messaging
// platforms. The pipeline stays channel-agnostic and picks a sender by the
// conversation's channel name.
package channels

import (
	"context"
	"fmt"

	"jaytaylor.com/html2text"

	"github.com/clariohq/clario/core/types"
)

// Sender delivers one outbound message to a platform recipient.
type Sender interface {
	Name() string
	Send(ctx context.Context, recipient, text string) error
}

// Registry maps channel names to senders.
type Registry struct {
	senders map[string]Sender
}

func NewRegistry(senders ...Sender) *Registry {
	r := &Registry{senders: map[string]Sender{}}
	for _, s := range senders {
		r.senders[s.Name()] = s
	}
	return r
}

// Deliver sends text over the named channel. Unknown channels fail with a
// capability error so the pipeline can surface them without retrying.
func (r *Registry) Deliver(ctx context.Context, channel, recipient, text string) error {
	s, ok := r.senders[channel]
	if !ok {
		return fmt.Errorf("%w: no sender for channel %q", types.ErrCapability, channel)
	}
	if err := s.Send(ctx, recipient, PlainText(text)); err != nil {
		return fmt.Errorf("%w: %s delivery: %v", types.ErrCapability, channel, err)
	}
	return nil
}

// Has reports whether a sender is registered for the channel.
func (r *Registry) Has(channel string) bool {
	_, ok := r.senders[channel]
	return ok
}

// PlainText strips HTML markup from generated responses. Models occasionally
// emit markup even when asked for plain text.
func PlainText(text string) string {
	plain, err := html2text.FromString(text, html2text.Options{TextOnly: true})
	if err != nil {
		return text
	}
	return plain
}
