// Package view holds the presentation model of a quiz: a flat list of nodes
// the browser mirrors one-to-one as DOM elements.
package view

import (
	"sync"

	"spectroquiz/internal/quiz"
)

type Kind string

const (
	KindInstructions Kind = "instructions"
	KindPlayer       Kind = "player"
	KindChoice       Kind = "choice"
	KindResult       Kind = "result"
	KindCitations    Kind = "citations"
)

// Tone is the background treatment of a choice row.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneCorrect Tone = "correct"
	ToneWrong   Tone = "wrong"
)

const Welcome = "Listen to a bird and find its spectrogram among three. Press the button to start."

type Node struct {
	ID       string     `json:"id"`
	Kind     Kind       `json:"kind"`
	Round    int        `json:"round,omitempty"`
	Text     string     `json:"text,omitempty"`
	Src      string     `json:"src,omitempty"`
	Autoplay bool       `json:"autoplay,omitempty"`
	Label    quiz.Label `json:"label,omitempty"`
	Checked  bool       `json:"checked,omitempty"`
	Tone     Tone       `json:"tone,omitempty"`
	Lines    []string   `json:"lines,omitempty"`
}

// Board implements quiz.Surface. Render replaces every node, so rounds never
// accumulate.
type Board struct {
	mu    sync.Mutex
	nodes []Node
}

var _ quiz.Surface = (*Board)(nil)

func NewBoard() *Board {
	return &Board{
		nodes: []Node{{ID: "instructions", Kind: KindInstructions, Text: Welcome}},
	}
}

func (b *Board) Render(v quiz.RoundView) {
	b.mu.Lock()
	defer b.mu.Unlock()

	nodes := make([]Node, 0, 7)
	nodes = append(nodes,
		Node{ID: "instructions", Kind: KindInstructions, Round: v.Number, Text: v.Instructions},
		Node{ID: "player", Kind: KindPlayer, Round: v.Number, Src: v.AudioURL, Autoplay: v.Autoplay},
	)
	for _, c := range v.Choices {
		nodes = append(nodes, Node{
			ID:    "row-" + string(c.Label),
			Kind:  KindChoice,
			Round: v.Number,
			Label: c.Label,
			Src:   c.ImageURL,
			Tone:  ToneNeutral,
		})
	}
	nodes = append(nodes,
		Node{ID: "result", Kind: KindResult, Round: v.Number},
		Node{ID: "citations", Kind: KindCitations, Round: v.Number},
	)
	b.nodes = nodes
}

func (b *Board) ClearSelection(l quiz.Label) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n := b.find("row-" + string(l)); n != nil {
		n.Checked = false
		n.Tone = ToneNeutral
	}
}

func (b *Board) MarkSelection(l quiz.Label, correct bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.find("row-" + string(l))
	if n == nil {
		return
	}
	n.Checked = true
	if correct {
		n.Tone = ToneCorrect
	} else {
		n.Tone = ToneWrong
	}
}

func (b *Board) ShowResult(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n := b.find("result"); n != nil {
		n.Text = text
	}
}

func (b *Board) ShowCitations(lines []string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n := b.find("citations"); n != nil {
		n.Lines = append([]string(nil), lines...)
	}
}

// Snapshot returns a copy of the current nodes.
func (b *Board) Snapshot() []Node {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Node, len(b.nodes))
	for i, n := range b.nodes {
		n.Lines = append([]string(nil), n.Lines...)
		out[i] = n
	}
	return out
}

// Selected returns the checked label, if any.
func (b *Board) Selected() (quiz.Label, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, n := range b.nodes {
		if n.Kind == KindChoice && n.Checked {
			return n.Label, true
		}
	}
	return "", false
}

func (b *Board) find(id string) *Node {
	for i := range b.nodes {
		if b.nodes[i].ID == id {
			return &b.nodes[i]
		}
	}
	return nil
}
