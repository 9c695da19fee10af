package bridge

import (
	"github.com/vango-dev/pagerouter/pkg/history"
)

// Message types sent by the browser.
const (
	TypeHello      = "hello"
	TypePopState   = "popstate"
	TypeHashChange = "hashchange"
	TypeClick      = "click"
)

// Message types sent by the server.
const (
	TypePush     = "push"
	TypeReplace  = "replace"
	TypeGo       = "go"
	TypeTitle    = "title"
	TypeDispatch = "dispatch"
	TypeRender   = "render"
	TypeError    = "error"
)

// Render operations.
const (
	OpText   = "text"
	OpAppend = "append"
	OpClear  = "clear"
	OpHidden = "hidden"
	OpStatus = "status"
)

// Message is one frame in either direction. Only the fields relevant to
// Type are set.
type Message struct {
	Type string `json:"type"`

	// Location is the browser's same-origin URL (hello, popstate,
	// hashchange).
	Location string `json:"location,omitempty"`

	// URL is the history write target (push, replace).
	URL string `json:"url,omitempty"`

	// Href is the clicked link target (click).
	Href string `json:"href,omitempty"`

	State history.State `json:"state,omitempty"`
	Title string        `json:"title,omitempty"`

	// Delta is the traversal distance (go).
	Delta int `json:"delta,omitempty"`

	// Name and Detail carry a dispatched notification.
	Name   string `json:"name,omitempty"`
	Detail any    `json:"detail,omitempty"`

	// Target, Op and the fields below describe a render operation.
	Target string `json:"target,omitempty"`
	Op     string `json:"op,omitempty"`
	Markup string `json:"markup,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
	Status string `json:"status,omitempty"`

	// Code and Error describe a rejected message (error).
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}
