package notification

import "context"

// ChannelSource reads notifications from an in-process Go channel. It
// is the test stand-in for HTTPSource: closing the channel signals
// orderly shutdown.
type ChannelSource struct {
	notifications chan *PushNotification
}

// NewChannelSource creates a ChannelSource backed by a channel of the
// given buffer size.
func NewChannelSource(buffer int) *ChannelSource {
	return &ChannelSource{notifications: make(chan *PushNotification, buffer)}
}

// Send delivers a notification to the source. It blocks if the
// channel's buffer is full.
func (s *ChannelSource) Send(n *PushNotification) {
	s.notifications <- n
}

// Close signals orderly shutdown: the next Next call returns (nil, nil).
func (s *ChannelSource) Close() {
	close(s.notifications)
}

func (s *ChannelSource) Next(ctx context.Context) (*PushNotification, error) {
	select {
	case n, ok := <-s.notifications:
		if !ok {
			return nil, nil
		}
		return n, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *ChannelSource) Step(ctx context.Context, store Enqueuer) (bool, error) {
	return BaseStep(ctx, s, store)
}
