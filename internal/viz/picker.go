package viz

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/odestream/internal/physics"
)

var modelInfo = map[string]string{
	physics.OscillatorName: "linear oscillator",
	physics.NeuronName:     "spiking neuron",
	physics.LorenzName:     "butterfly attractor",
}

// Entry is one selectable model/preset pair.
type Entry struct {
	Model  string
	Preset string
}

// Launcher builds the live view for an entry.
type Launcher func(Entry) (Model, error)

// Picker lists entries and starts a live view for the chosen one. Esc in the
// live view returns to the list.
type Picker struct {
	entries []Entry
	cursor  int
	launch  Launcher
	live    *Model
	err     error
}

func NewPicker(entries []Entry, launch Launcher) Picker {
	return Picker{entries: entries, launch: launch}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.live != nil {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			p.live = nil
			return p, nil
		}
		next, cmd := p.live.Update(msg)
		live := next.(Model)
		p.live = &live
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.entries)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.entries) == 0 {
			return p, nil
		}
		live, err := p.launch(p.entries[p.cursor])
		if err != nil {
			p.err = err
			return p, nil
		}
		p.err = nil
		p.live = &live
		return p, live.Init()
	}
	return p, nil
}

// Selected returns the entry under the cursor.
func (p Picker) Selected() Entry {
	if len(p.entries) == 0 {
		return Entry{}
	}
	return p.entries[p.cursor]
}

// Live reports whether a simulation view is active.
func (p Picker) Live() bool { return p.live != nil }

func (p Picker) View() string {
	if p.live != nil {
		return p.live.View()
	}

	st := newStyles(Themes[0])
	lines := []string{
		st.header.Render("ODESTREAM"),
		st.help.UnsetMarginTop().Render("ode integration, live"),
		"",
	}
	for i, e := range p.entries {
		name := fmt.Sprintf("%-20s %-10s", e.Model, e.Preset)
		if i == p.cursor {
			lines = append(lines, st.active.Render("▸ "+name)+"  "+st.value.Render(modelInfo[e.Model]))
		} else {
			lines = append(lines, "  "+st.label.UnsetWidth().Render(name))
		}
	}
	if p.err != nil {
		lines = append(lines, "", st.bad.Render(p.err.Error()))
	}
	lines = append(lines, st.help.Render("j/k navigate  enter select  esc back  q quit"))
	return lipgloss.NewStyle().Margin(2, 4).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
