package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/dispatch"
)

type studioMode int

const (
	modeBrowse studioMode = iota
	modeEdit
	modeConfirm
)

const sepWidth = 72

// dispatchDoneMsg reports a finished dispatch. The outcome itself lives in
// the controller's store.
type dispatchDoneMsg struct {
	key string
	err error
}

// StudioModel is the Bubble Tea model of the function studio: a navigator
// over the catalog, an input form for the selected function and the latest
// result of each function.
type StudioModel struct {
	ctx     context.Context
	title   string
	session *contract.Session
	ctrl    *dispatch.Controller

	fns     []*contract.FunctionDescriptor // reads first, then writes
	cursor  int
	mode    studioMode
	field   int
	pending map[string]bool

	Quitting bool
}

// NewStudio builds the studio for the ABI loaded in session. Calls go
// through ctrl.
func NewStudio(ctx context.Context, title string, session *contract.Session, ctrl *dispatch.Controller) StudioModel {
	all := session.Catalog().Functions()
	reads := lo.Filter(all, func(f *contract.FunctionDescriptor, _ int) bool { return f.IsRead() })
	writes := lo.Filter(all, func(f *contract.FunctionDescriptor, _ int) bool { return !f.IsRead() })
	return StudioModel{
		ctx:     ctx,
		title:   title,
		session: session,
		ctrl:    ctrl,
		fns:     append(reads, writes...),
		pending: map[string]bool{},
	}
}

func (m StudioModel) Init() tea.Cmd { return nil }

// Selected returns the function under the cursor, or nil for an empty ABI.
func (m StudioModel) Selected() *contract.FunctionDescriptor {
	if len(m.fns) == 0 {
		return nil
	}
	return m.fns[m.cursor]
}

func (m StudioModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dispatchDoneMsg:
		delete(m.pending, msg.key)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modeEdit:
			return m.updateEdit(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m StudioModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.Quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.fns)-1 {
			m.cursor++
		}
	case "enter", " ":
		fn := m.Selected()
		if fn == nil {
			return m, nil
		}
		if len(fn.Inputs) > 0 {
			m.mode, m.field = modeEdit, 0
			return m, nil
		}
		return m.submit(fn)
	case "s":
		if fn := m.Selected(); fn != nil && !fn.IsRead() {
			return m.run(fn, true)
		}
	case "x":
		// In-flight calls would land in a cleared store.
		if len(m.pending) == 0 {
			m.ctrl.Store().Reset()
		}
	}
	return m, nil
}

func (m StudioModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fn := m.Selected()
	name := fn.InputName(m.field)
	value := m.session.Row(fn.Key())[name]

	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
	case tea.KeyTab, tea.KeyDown:
		m.field = (m.field + 1) % len(fn.Inputs)
	case tea.KeyShiftTab, tea.KeyUp:
		m.field = (m.field + len(fn.Inputs) - 1) % len(fn.Inputs)
	case tea.KeyBackspace:
		if r := []rune(value); len(r) > 0 {
			_ = m.session.SetInput(fn.Key(), name, string(r[:len(r)-1]))
		}
	case tea.KeyCtrlU:
		_ = m.session.SetInput(fn.Key(), name, "")
	case tea.KeyCtrlS:
		if !fn.IsRead() {
			return m.run(fn, true)
		}
	case tea.KeyEnter:
		return m.submit(fn)
	case tea.KeyRunes, tea.KeySpace:
		_ = m.session.SetInput(fn.Key(), name, value+string(msg.Runes))
	}
	return m, nil
}

func (m StudioModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fn := m.Selected()
	m.mode = modeBrowse
	if len(fn.Inputs) > 0 {
		m.mode = modeEdit
	}
	if msg.String() == "y" {
		return m.run(fn, false)
	}
	return m, nil
}

// submit reads view functions right away and asks before sending a
// transaction.
func (m StudioModel) submit(fn *contract.FunctionDescriptor) (tea.Model, tea.Cmd) {
	if fn.IsRead() {
		return m.run(fn, false)
	}
	m.mode = modeConfirm
	return m, nil
}

func (m StudioModel) run(fn *contract.FunctionDescriptor, simulate bool) (tea.Model, tea.Cmd) {
	key := fn.Key()
	row := m.session.Row(key)
	m.pending[key] = true
	ctx, ctrl := m.ctx, m.ctrl
	return m, func() tea.Msg {
		_, err := ctrl.Dispatch(ctx, fn, row, simulate)
		return dispatchDoneMsg{key: key, err: err}
	}
}

func (m StudioModel) View() string {
	if m.Quitting {
		return ""
	}

	var sb strings.Builder
	target := m.ctrl.Target()
	chainLabel := "no chain"
	if target.Chain != nil {
		chainLabel = target.Chain.Label()
	}
	sb.WriteString(StyleTitle.Render(fmt.Sprintf("  Function Studio  ·  %s  ·  %s", m.title, chainLabel)) + "\n")
	fmt.Fprintf(&sb, "  %-10s %s\n", StyleMeta.Render("Address"), StyleAddress.Render(target.Address))
	fmt.Fprintf(&sb, "  %-10s %d of %d\n\n", StyleMeta.Render("Called"), len(m.ctrl.Store().Keys()), len(m.fns))

	var reads, writes int
	for _, fn := range m.fns {
		if fn.IsRead() {
			reads++
		} else {
			writes++
		}
	}
	m.writeSection(&sb, "Read", 0, reads)
	m.writeSection(&sb, "Write", reads, reads+writes)

	ruler := StyleMeta.Render(strings.Repeat("─", sepWidth))
	sb.WriteString(ruler + "\n")
	if fn := m.Selected(); fn != nil {
		m.writePanel(&sb, fn)
	} else {
		sb.WriteString(StyleMeta.Render("  This ABI has no callable functions.") + "\n")
	}
	sb.WriteString(ruler + "\n\n")
	if err := m.ctrl.Store().LastError(); err != nil {
		sb.WriteString(StyleMeta.Render("  Last error: ") + StyleError.Render(err.Error()) + "\n\n")
	}
	sb.WriteString(m.controls() + "\n")
	return sb.String()
}

func (m StudioModel) writeSection(sb *strings.Builder, title string, from, to int) {
	if from == to {
		return
	}
	hdr := fmt.Sprintf("  ── %s (%d) ", title, to-from)
	fill := max(sepWidth-len(hdr)-2, 0)
	sb.WriteString(StyleHeader.Render(hdr) + StyleMeta.Render(strings.Repeat("─", fill)) + "\n")

	for i := from; i < to; i++ {
		fn := m.fns[i]
		prefix := "    "
		if i == m.cursor {
			prefix = "  ▸ "
		}
		name := StyleValue.Render(fn.Key())
		if !fn.IsRead() {
			name = StyleWarning.Render(fn.Key())
		}
		line := fmt.Sprintf("%s%s  %s(%s)", prefix, StyleMeta.Render(fn.SelectorHex()), name, StyleMeta.Render(paramSig(fn)))
		if len(fn.Outputs) > 0 {
			outs := lo.Map(fn.Outputs, func(o contract.FunctionOutput, _ int) string { return o.Type })
			line += StyleMeta.Render("  →  " + strings.Join(outs, ", "))
		}
		if m.pending[fn.Key()] {
			line += StyleInfo.Render("  …")
		}
		if i == m.cursor {
			line = StyleSelected.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")
}

func (m StudioModel) writePanel(sb *strings.Builder, fn *contract.FunctionDescriptor) {
	fmt.Fprintf(sb, "  %s  %s\n", StyleLabel.Render(fn.Signature()), StyleMeta.Render(string(fn.Mutability)))

	row := m.session.Row(fn.Key())
	for i, in := range fn.Inputs {
		name := fn.InputName(i)
		cursor := "    "
		value := row[name]
		if m.mode == modeEdit && i == m.field {
			cursor = "  ▸ "
			value += "█"
		}
		fmt.Fprintf(sb, "%s%s %s: %s\n", cursor, StyleLabel.Render(name), StyleMeta.Render("("+in.Type+")"), StyleValue.Render(value))
	}

	slot, ok := m.ctrl.Store().Get(fn.Key())
	switch {
	case m.pending[fn.Key()]:
		sb.WriteString("\n" + Info(fmt.Sprintf("%s…", slot.State)) + "\n")
	case !ok:
	case slot.Err != nil:
		sb.WriteString("\n" + Err(slot.Err.Error()) + "\n")
	case slot.Result != nil:
		res := slot.Result
		head := res.Note
		if res.IsSimulation {
			head = "simulation: " + head
		}
		sb.WriteString("\n" + Success(head) + "  " + StyleMeta.Render(res.Timestamp.Format("15:04:05")) + "\n")
		for _, line := range strings.Split(RenderNode(res.Render()), "\n") {
			sb.WriteString("  " + line + "\n")
		}
	}
	if m.mode == modeConfirm {
		sb.WriteString("\n" + StyleWarning.Render(fmt.Sprintf("  Send a transaction calling %s? [y/N]", fn.Key())) + "\n")
	}
}

func (m StudioModel) controls() string {
	switch m.mode {
	case modeEdit:
		return StyleMeta.Render("  [ tab / ↑↓ ]") + " field   " +
			StyleInfo.Render("[ Enter ]") + " run   " +
			StyleMeta.Render("[ ctrl+s ]") + " simulate   " +
			StyleMeta.Render("[ ctrl+u ]") + " clear   " +
			StyleMeta.Render("[ esc ]") + " back"
	case modeConfirm:
		return StyleMeta.Render("  [ y ]") + " send   " + StyleMeta.Render("[ any ]") + " cancel"
	}
	return StyleMeta.Render("  [ ↑↓ / jk ]") + " navigate   " +
		StyleInfo.Render("[ Enter ]") + " select & call   " +
		StyleMeta.Render("[ s ]") + " simulate   " +
		StyleMeta.Render("[ x ]") + " clear results   " +
		StyleMeta.Render("[ q ]") + " quit"
}

// RunStudio runs the studio full screen until the user quits.
func RunStudio(m StudioModel) error {
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("studio: %w", err)
	}
	return nil
}

// paramSig formats inputs as "type name, type name".
func paramSig(fn *contract.FunctionDescriptor) string {
	parts := make([]string, len(fn.Inputs))
	for i, in := range fn.Inputs {
		parts[i] = in.Type + " " + fn.InputName(i)
	}
	return strings.Join(parts, ", ")
}
