package bridge

import (
	"github.com/vango-dev/pagerouter/pkg/content"
	"github.com/vango-dev/pagerouter/pkg/pageroute"
)

// Target renders onto one element of the browser page. Send failures are
// logged; a closed connection makes every operation a no-op.
type Target struct {
	conn *Conn
	id   string
}

// ID returns the element id.
func (t *Target) ID() string {
	return t.id
}

// SetText implements content.Target.
func (t *Target) SetText(markup string) {
	t.render(Message{Op: OpText, Markup: markup})
}

// Append implements content.Target.
func (t *Target) Append(n content.Node) {
	t.render(Message{Op: OpAppend, Markup: n.Markup})
}

// Clear implements content.Target.
func (t *Target) Clear() {
	t.render(Message{Op: OpClear})
}

// SetHidden implements pageroute.Target.
func (t *Target) SetHidden(hidden bool) {
	t.render(Message{Op: OpHidden, Hidden: hidden})
}

// SetStatus implements pageroute.Target.
func (t *Target) SetStatus(s pageroute.Status) {
	t.render(Message{Op: OpStatus, Status: s.String()})
}

func (t *Target) render(msg Message) {
	if t.conn.IsClosed() {
		return
	}
	msg.Type = TypeRender
	msg.Target = t.id
	if err := t.conn.send(msg); err != nil {
		t.conn.logger.Debug("render failed", "target", t.id, "op", msg.Op, "error", err)
	}
}

var _ pageroute.Target = (*Target)(nil)
