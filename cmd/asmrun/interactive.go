package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/asmcore/asmcore/conformance/interp"
	"github.com/asmcore/asmcore/instantiate"
	"github.com/asmcore/asmcore/link"
	"github.com/asmcore/asmcore/module"
	"github.com/asmcore/asmcore/opcode"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type callState int

const (
	stateSelectFunc callState = iota
	stateInputArgs
	stateShowResult
)

// callModel drives an interactive "pick an exported function, type its
// arguments, see the result" loop, the asmrun counterpart to the teacher's
// component-call wizard (cmd/run/interactive.go), generalized from WIT
// parameter types down to this toolchain's four ValueTypes.
type callModel struct {
	filename string
	m        *module.Module
	inst     *instantiate.Instance
	machine  *interp.Machine

	names    []string
	selected int
	focusIdx int
	inputs   []textinput.Model
	result   string
	err      error
	state    callState
}

func newCallModel(filename string, m *module.Module, inst *instantiate.Instance, machine *interp.Machine) *callModel {
	var names []string
	for name := range inst.Exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return &callModel{filename: filename, m: m, inst: inst, machine: machine, names: names, state: stateSelectFunc}
}

func (c *callModel) Init() tea.Cmd { return nil }

func (c *callModel) currentSignature() opcode.Signature {
	idx := c.inst.Exports[c.names[c.selected]]
	return c.m.Functions[idx].Signature
}

func (c *callModel) enterInputArgs() {
	sig := c.currentSignature()
	c.inputs = make([]textinput.Model, len(sig.Params))
	for i, p := range sig.Params {
		ti := textinput.New()
		ti.Placeholder = p.String()
		ti.CharLimit = 32
		if i == 0 {
			ti.Focus()
		}
		c.inputs[i] = ti
	}
	c.focusIdx = 0
	c.state = stateInputArgs
	c.err = nil
	if len(sig.Params) == 0 {
		c.invoke()
	}
}

func (c *callModel) invoke() {
	sig := c.currentSignature()
	args := make([]instantiate.Value, len(sig.Params))
	for i, p := range sig.Params {
		v, err := parseValue(p, c.inputs[i].Value())
		if err != nil {
			c.err = fmt.Errorf("argument %d (%s): %w", i, p, err)
			return
		}
		args[i] = v
	}
	idx := c.inst.Exports[c.names[c.selected]]
	res, err := c.machine.Call(c.inst, idx, args)
	if err != nil {
		c.err = err
		c.state = stateShowResult
		return
	}
	c.result = formatValue(res)
	c.state = stateShowResult
	c.err = nil
}

func (c *callModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}
	switch c.state {
	case stateSelectFunc:
		switch keyMsg.String() {
		case "ctrl+c", "q":
			return c, tea.Quit
		case "up", "k":
			if c.selected > 0 {
				c.selected--
			}
		case "down", "j":
			if c.selected < len(c.names)-1 {
				c.selected++
			}
		case "enter":
			if len(c.names) > 0 {
				c.enterInputArgs()
			}
		}
		return c, nil

	case stateInputArgs:
		switch keyMsg.String() {
		case "ctrl+c":
			return c, tea.Quit
		case "esc":
			c.state = stateSelectFunc
			return c, nil
		case "tab", "down":
			c.inputs[c.focusIdx].Blur()
			c.focusIdx = (c.focusIdx + 1) % len(c.inputs)
			c.inputs[c.focusIdx].Focus()
			return c, nil
		case "shift+tab", "up":
			c.inputs[c.focusIdx].Blur()
			c.focusIdx = (c.focusIdx - 1 + len(c.inputs)) % len(c.inputs)
			c.inputs[c.focusIdx].Focus()
			return c, nil
		case "enter":
			c.invoke()
			return c, nil
		}
		var cmd tea.Cmd
		c.inputs[c.focusIdx], cmd = c.inputs[c.focusIdx].Update(keyMsg)
		return c, cmd

	case stateShowResult:
		switch keyMsg.String() {
		case "ctrl+c", "q":
			return c, tea.Quit
		case "esc":
			c.state = stateSelectFunc
			c.err = nil
		}
		return c, nil
	}
	return c, nil
}

func (c *callModel) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("asmrun"))
	sb.WriteString(" ")
	sb.WriteString(c.filename)
	sb.WriteString("\n\n")

	switch c.state {
	case stateSelectFunc:
		if len(c.names) == 0 {
			sb.WriteString(errorStyle.Render("module exports no functions"))
			sb.WriteString("\n")
			break
		}
		for i, name := range c.names {
			sig := c.m.Functions[c.inst.Exports[name]].Signature
			line := fmt.Sprintf("%s %s", name, signatureString(sig))
			if i == c.selected {
				sb.WriteString(selectedStyle.Render("> " + line))
			} else {
				sb.WriteString("  " + funcStyle.Render(line))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		sb.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		sig := c.currentSignature()
		for i, ti := range c.inputs {
			sb.WriteString(fmt.Sprintf("arg%d (%s): %s\n", i, sig.Params[i], ti.View()))
		}
		if c.err != nil {
			sb.WriteString(errorStyle.Render(c.err.Error()))
			sb.WriteString("\n")
		}
		sb.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		if c.err != nil {
			sb.WriteString(errorStyle.Render(fmt.Sprintf("call failed: %v", c.err)))
		} else {
			sb.WriteString(resultStyle.Render(c.result))
		}
		sb.WriteString("\n")
		sb.WriteString(helpStyle.Render("esc back • q quit"))
	}
	return sb.String()
}

func runInteractiveCall(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	m, err := module.Decode(data, 0, module.DefaultOptions())
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	machine := interp.NewMachine(link.New(len(m.Functions), nil))
	inst, err := instantiate.Instantiate(m, instantiate.Options{Limits: instantiate.DefaultLimits(), CodeGen: machine})
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	p := tea.NewProgram(newCallModel(path, m, inst, machine), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
