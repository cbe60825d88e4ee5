// Package remote exposes the viewer entry points over a websocket so that
// other processes can trigger the intro and animation.
package remote

import (
	"errors"
	"fmt"
)

// Command names accepted on the wire.
const (
	StartAnimation            = "start-animation"
	StartCameraRotation       = "start-camera-rotation"
	StartRotationAndAnimation = "start-rotation-and-animation"
)

// ErrUnknownCommand is returned by Dispatch for names it does not handle.
var ErrUnknownCommand = errors.New("unknown command")

// Command is one request from a client.
type Command struct {
	Name     string `json:"command"`
	AutoPlay bool   `json:"auto_play,omitempty"`
}

// Event is pushed to every connected client.
type Event struct {
	Event    string `json:"event"`
	State    string `json:"state,omitempty"`
	Command  string `json:"command,omitempty"`
	Accepted *bool  `json:"accepted,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Target is the set of entry points a command can reach.
type Target interface {
	StartAnimation(autoPlay bool) bool
	StartCameraRotation() bool
	StartRotationAndAnimation() bool
}

// Dispatch runs c against t and reports whether t accepted it.
func Dispatch(t Target, c Command) (bool, error) {
	switch c.Name {
	case StartAnimation:
		return t.StartAnimation(c.AutoPlay), nil
	case StartCameraRotation:
		return t.StartCameraRotation(), nil
	case StartRotationAndAnimation:
		return t.StartRotationAndAnimation(), nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownCommand, c.Name)
	}
}

// StateEvent reports an intro state change.
func StateEvent(state fmt.Stringer) Event {
	return Event{Event: "intro", State: state.String()}
}

func resultEvent(c Command, accepted bool, err error) Event {
	ev := Event{Event: "result", Command: c.Name, Accepted: &accepted}
	if err != nil {
		ev.Error = err.Error()
	}
	return ev
}
