package agent

import (
	"fmt"
	"reflect"
	"testing"
)

func TestWindow_EvictsOldestBeyondK(t *testing.T) {
	w := NewWindow(3)
	for i := 1; i <= 7; i++ {
		w.Add(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	if w.Len() != 3 {
		t.Fatalf("window length %d, want 3", w.Len())
	}

	want := []Turn{
		{Human: "q5", Answer: "a5"},
		{Human: "q6", Answer: "a6"},
		{Human: "q7", Answer: "a7"},
	}
	if got := w.Turns(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want the 3 most recent turns in order", got)
	}
}

func TestWindow_UnderK(t *testing.T) {
	w := NewWindow(5)
	w.Add("q1", "a1")
	w.Add("q2", "a2")

	if w.Len() != 2 {
		t.Errorf("window length %d, want 2", w.Len())
	}
}

func TestWindow_RenderEmpty(t *testing.T) {
	if got := NewWindow(5).Render("(Human)", "(AI)"); got != "" {
		t.Errorf("empty window must render empty, got %q", got)
	}
}

func TestWindow_RenderAlternatingPrefixes(t *testing.T) {
	w := NewWindow(5)
	w.Add("how are you", "never better")
	w.Add("really", "no")

	want := "(Human) how are you\n(AI) never better\n(Human) really\n(AI) no"
	if got := w.Render("(Human)", "(AI)"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
