package viz

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/kinefig/internal/scene"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if c.Grid[0][0] != blank|0x1 {
		t.Errorf("expected dot 1 in first cell, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != blank|0x80 {
		t.Errorf("expected dot 8 in second cell, got %U", c.Grid[0][1])
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 1)
	c.DrawLine(0, 0, 7, 0)
	for i, r := range c.Grid[0] {
		if r != blank|0x1|0x8 {
			t.Errorf("cell %d: expected top row lit, got %U", i, r)
		}
	}
}

func TestPreview(t *testing.T) {
	l := scene.Layout{Width: 2, Height: 2, XMin: -1, XMax: 1, YMin: -1, YMax: 1}
	f := scene.Frame{Shapes: []scene.Shape{
		scene.Marker{Center: scene.Point{X: 0, Y: 0}, Size: 10, Fill: scene.Body},
	}}

	c := Preview(l, f, 20)
	if c.Width != 20 || c.Height != 10 {
		t.Fatalf("expected 20x10 cells, got %dx%d", c.Width, c.Height)
	}
	if c.Grid[5][10] == blank && c.Grid[4][9] == blank {
		t.Error("marker not drawn at the center")
	}
	if c.Grid[0][0] != blank {
		t.Error("corner should be empty")
	}
	if got := strings.Count(c.String(), "\n"); got != 10 {
		t.Errorf("expected 10 lines, got %d", got)
	}
}

func TestProgressModel(t *testing.T) {
	var m tea.Model = NewProgressModel("pendulum", 10)

	m, _ = m.Update(ProgressMsg{Done: 4, Total: 10})
	if got := m.(ProgressModel).Done; got != 4 {
		t.Errorf("expected 4 frames done, got %d", got)
	}
	if !strings.Contains(m.View(), "4/10 frames") {
		t.Errorf("view missing counter: %q", m.View())
	}

	m, cmd := m.Update(DoneMsg{Err: errors.New("boom")})
	if cmd == nil {
		t.Error("expected quit command")
	}
	if m.(ProgressModel).Err == nil {
		t.Error("expected error to be kept")
	}
}

func TestMetrics(t *testing.T) {
	out := Metrics(map[string]float64{"energy": 1.5, "bounces": 12})
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "bounces") || !strings.Contains(lines[1], "energy") {
		t.Errorf("expected sorted names, got %q", out)
	}
}
