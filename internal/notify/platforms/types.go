// Package platforms holds the delivery adapters game notifications go out
// through: Discord webhooks, Feishu cards, and plain JSON posts.
package platforms

import "context"

type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Message is a rendered notification. Adapters drop the parts their
// platform cannot show.
type Message struct {
	Title       string
	Content     string
	Description string
	Color       int
	Timestamp   string
	Footer      string
	Fields      []Field
}

// Adapter delivers one message to one endpoint. Send reports any non-2xx
// response as an error so the caller can retry.
type Adapter interface {
	Name() string
	Send(ctx context.Context, endpoint, secret string, msg Message) error
}
