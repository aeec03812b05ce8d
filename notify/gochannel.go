package notify

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// GoChannelNotifier implements Notifier on Watermill's in-process pub/sub.
type GoChannelNotifier struct {
	pubsub *gochannel.GoChannel
}

func NewGoChannel() *GoChannelNotifier {
	return &GoChannelNotifier{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 16,
		}, watermill.NopLogger{}),
	}
}

func (n *GoChannelNotifier) Publish(topic string, payload []byte) error {
	return n.pubsub.Publish(topic, message.NewMessage(watermill.NewUUID(), payload))
}

func (n *GoChannelNotifier) Subscribe(ctx context.Context, topic string) (<-chan []byte, error) {
	messages, err := n.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}

	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		for msg := range messages {
			msg.Ack()
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (n *GoChannelNotifier) Close() error {
	return n.pubsub.Close()
}
