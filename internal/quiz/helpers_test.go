package quiz

import (
	"fmt"
	"strconv"
	"testing"

	"spectroquiz/internal/xenocanto"
)

// scriptedRand replays fixed draws so scenarios are deterministic.
type scriptedRand struct {
	t    *testing.T
	seq  []int
	used int
}

func script(t *testing.T, seq ...int) *scriptedRand {
	return &scriptedRand{t: t, seq: seq}
}

func (r *scriptedRand) Intn(n int) int {
	r.t.Helper()
	if r.used >= len(r.seq) {
		r.t.Fatalf("scriptedRand exhausted after %d draws (Intn(%d))", r.used, n)
	}
	v := r.seq[r.used]
	if v < 0 || v >= n {
		r.t.Fatalf("scripted draw %d is outside [0,%d)", v, n)
	}
	r.used++
	return v
}

func (r *scriptedRand) add(seq ...int) { r.seq = append(r.seq, seq...) }

func recording(i int) xenocanto.Recording {
	id := strconv.Itoa(i)
	return xenocanto.Recording{
		ID:        id,
		Recordist: "Recordist " + id,
		AudioURL:  fmt.Sprintf("https://xeno-canto.org/%d/download", i),
		Sono:      xenocanto.Sonograms{Large: fmt.Sprintf("//xeno-canto.org/sono/%d-large.png", i)},
		License:   "//creativecommons.org/licenses/by-nc-sa/4.0/",
	}
}

func img(i int) string { return fmt.Sprintf("https://xeno-canto.org/sono/%d-large.png", i) }

func testPage(n int) xenocanto.Page {
	p := xenocanto.Page{Query: "q:A", Number: 1, NumPages: 1}
	for i := 0; i < n; i++ {
		p.Recordings = append(p.Recordings, recording(i))
	}
	return p
}

type surfaceCall struct {
	op      string
	label   Label
	correct bool
	text    string
}

// fakeSurface records every call the core makes into the presentation layer.
type fakeSurface struct {
	calls     []surfaceCall
	renders   []RoundView
	citations []string
}

func (f *fakeSurface) Render(v RoundView) {
	f.renders = append(f.renders, v)
	f.calls = append(f.calls, surfaceCall{op: "render"})
}

func (f *fakeSurface) ClearSelection(l Label) {
	f.calls = append(f.calls, surfaceCall{op: "clear", label: l})
}

func (f *fakeSurface) MarkSelection(l Label, correct bool) {
	f.calls = append(f.calls, surfaceCall{op: "mark", label: l, correct: correct})
}

func (f *fakeSurface) ShowResult(text string) {
	f.calls = append(f.calls, surfaceCall{op: "result", text: text})
}

func (f *fakeSurface) ShowCitations(lines []string) {
	f.citations = lines
	f.calls = append(f.calls, surfaceCall{op: "citations"})
}

func (f *fakeSurface) reset() { f.calls = nil }

func (f *fakeSurface) lastResult() string {
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].op == "result" {
			return f.calls[i].text
		}
	}
	return ""
}
