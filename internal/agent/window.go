package agent

import "strings"

// Turn is one completed human/agent exchange.
type Turn struct {
	Human  string
	Answer string
}

// Window is the bounded conversation memory: at most k most recent turns,
// FIFO eviction. It is not safe for concurrent use on its own; Buddy
// serializes access per session.
type Window struct {
	k     int
	turns []Turn
}

const defaultWindowSize = 5

func NewWindow(k int) *Window {
	if k <= 0 {
		k = defaultWindowSize
	}
	return &Window{k: k}
}

// Add appends a completed turn, evicting the oldest when the window is full.
func (w *Window) Add(human, answer string) {
	w.turns = append(w.turns, Turn{Human: human, Answer: answer})
	if len(w.turns) > w.k {
		w.turns = w.turns[len(w.turns)-w.k:]
	}
}

func (w *Window) Len() int { return len(w.turns) }

// Turns returns a copy of the window, oldest first.
func (w *Window) Turns() []Turn {
	out := make([]Turn, len(w.turns))
	copy(out, w.turns)
	return out
}

// Render formats the window as alternating prefixed lines, oldest first.
func (w *Window) Render(humanPrefix, aiPrefix string) string {
	var sb strings.Builder
	for i, turn := range w.turns {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(humanPrefix + " " + turn.Human + "\n")
		sb.WriteString(aiPrefix + " " + turn.Answer)
	}
	return sb.String()
}
