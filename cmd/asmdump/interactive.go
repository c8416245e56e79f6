package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/asmcore/asmcore/module"
	"github.com/asmcore/asmcore/verify"
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

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browserModel struct {
	filename string
	m        *module.Module
	err      error
	selected int
	showIR   bool
	irText   string
}

func newBrowserModel(filename string, m *module.Module) *browserModel {
	return &browserModel{filename: filename, m: m}
}

func (b *browserModel) Init() tea.Cmd { return nil }

func (b *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}
	switch keyMsg.String() {
	case "ctrl+c", "q":
		return b, tea.Quit
	case "up", "k":
		if !b.showIR && b.selected > 0 {
			b.selected--
		}
	case "down", "j":
		if !b.showIR && b.selected < len(b.m.Functions)-1 {
			b.selected++
		}
	case "enter":
		if !b.showIR {
			b.irText, b.err = b.renderFunc(b.selected)
			b.showIR = true
		}
	case "esc":
		b.showIR = false
		b.err = nil
	}
	return b, nil
}

func (b *browserModel) renderFunc(i int) (string, error) {
	f := b.m.Functions[i]
	if f.External {
		return "(external function, no body to verify)", nil
	}
	env := verify.FuncEnv{
		Signature:  f.Signature,
		LocalCount: [4]int{int(f.LocalI32), int(f.LocalI64), int(f.LocalF32), int(f.LocalF64)},
	}
	graph, err := verify.Verify(env, b.m.FuncBody(i), b.m.Start+int(f.CodeStart), b.m, b.m)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	dumpGraph(&sb, graph)
	return sb.String(), nil
}

func (b *browserModel) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("asmdump"))
	sb.WriteString(" ")
	sb.WriteString(b.filename)
	sb.WriteString("\n\n")

	if b.showIR {
		if b.err != nil {
			sb.WriteString(errorStyle.Render(fmt.Sprintf("verify error: %v", b.err)))
		} else {
			sb.WriteString(b.irText)
		}
		sb.WriteString("\n")
		sb.WriteString(helpStyle.Render("esc back • q quit"))
		return sb.String()
	}

	for i, f := range b.m.Functions {
		name, _ := b.m.Name(f.NameOffset)
		line := fmt.Sprintf("%s %s", name, signatureString(f))
		if i == b.selected {
			sb.WriteString(selectedStyle.Render("> " + line))
		} else {
			sb.WriteString("  " + funcStyle.Render(line))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("↑/↓ select • enter view IR • q quit"))
	return sb.String()
}

func runInteractive(filename string, data []byte) error {
	m, err := module.Decode(data, 0, module.Options{Limits: module.DefaultLimits()})
	if err != nil {
		return err
	}
	p := tea.NewProgram(newBrowserModel(filename, m), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
