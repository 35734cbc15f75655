package main

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"classvm/classfile"
	"classvm/interpreter"
	"classvm/vm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	methodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	opStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666666"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inspectorState int

const (
	stateSelectMethod inspectorState = iota
	stateInputArgs
	stateShowResult
)

type methodEntry struct {
	name       string
	descriptor string
	params     []byte
	opcodes    []classfile.OpCode
	decodeErr  error
}

type inspectorModel struct {
	filename string
	cf       *classfile.ClassFile
	methods  []methodEntry
	selected int

	state    inspectorState
	inputs   []textinput.Model
	focusIdx int

	err    error
	result string
}

func newInspectorModel(filename string, cf *classfile.ClassFile) *inspectorModel {
	var methods []methodEntry
	for _, m := range cf.Methods {
		name := m.Name(cf.ConstantPool)
		descriptor := m.Descriptor(cf.ConstantPool)
		entry := methodEntry{name: name, descriptor: descriptor, params: paramTypes(descriptor)}
		if code, err := m.GetCodeAttribute(cf.ConstantPool); err != nil {
			entry.decodeErr = err
		} else if code != nil {
			ops, err := code.OpCodes()
			entry.opcodes = ops
			entry.decodeErr = err
		}
		methods = append(methods, entry)
	}
	return &inspectorModel{filename: filename, cf: cf, methods: methods, state: stateSelectMethod}
}

func (m *inspectorModel) Init() tea.Cmd { return nil }

func (m *inspectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c", "q":
		if m.state != stateInputArgs {
			return m, tea.Quit
		}

	case "up", "k":
		if m.state == stateSelectMethod && m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.state == stateSelectMethod && m.selected < len(m.methods)-1 {
			m.selected++
		}

	case "enter":
		switch m.state {
		case stateSelectMethod:
			m.prepareInputs()
			if len(m.inputs) == 0 {
				m.call()
				return m, nil
			}
			m.state = stateInputArgs
		case stateInputArgs:
			m.call()
		case stateShowResult:
			m.state = stateSelectMethod
			m.result = ""
			m.err = nil
		}

	case "tab":
		if m.state == stateInputArgs && len(m.inputs) > 1 {
			m.inputs[m.focusIdx].Blur()
			m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
			m.inputs[m.focusIdx].Focus()
		}

	case "esc":
		switch m.state {
		case stateInputArgs:
			m.state = stateSelectMethod
			m.inputs = nil
		case stateShowResult:
			m.state = stateSelectMethod
			m.result = ""
			m.err = nil
		}
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *inspectorModel) prepareInputs() {
	entry := m.methods[m.selected]
	m.inputs = make([]textinput.Model, len(entry.params))
	for i, p := range entry.params {
		ti := textinput.New()
		ti.Placeholder = paramTypeStr(p)
		ti.Prompt = fmt.Sprintf("arg%d (%s): ", i, paramTypeStr(p))
		ti.Width = 20
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

// call runs the selected method to completion on a fresh JVM/thread. Each
// invocation is isolated: the inspector is a read-eval loop over one
// classfile, not a persistent VM session, so state never leaks between runs.
func (m *inspectorModel) call() {
	entry := m.methods[m.selected]
	args := make([]vm.Value, len(entry.params))
	for i, p := range entry.params {
		args[i] = parseArg(p, valueOf(m.inputs, i))
	}

	jvm := vm.NewJVM()
	defer jvm.Shutdown()
	class := jvm.LoadClass(m.cf)
	interp := interpreter.NewInterpreterWithJVM(jvm)

	result, hasResult, err := interp.ExecuteMethod(class, entry.name, entry.descriptor, args)
	m.err = err
	if err == nil {
		if hasResult {
			m.result = result.String()
		} else {
			m.result = "void"
		}
	}
	m.state = stateShowResult
}

func valueOf(inputs []textinput.Model, i int) string {
	if i >= len(inputs) {
		return ""
	}
	return inputs[i].Value()
}

func (m *inspectorModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("classvm inspector"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectMethod:
		b.WriteString("Select a method to run:\n\n")
		for i, entry := range m.methods {
			line := m.formatMethod(entry)
			cursor := "  "
			if i == m.selected {
				cursor = "> "
				b.WriteString(selectedStyle.Render(cursor + line))
			} else {
				b.WriteString(cursor + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("up/down select - enter run - q quit"))

	case stateInputArgs:
		entry := m.methods[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", methodStyle.Render(entry.name+entry.descriptor)))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field - enter call - esc back"))

	case stateShowResult:
		entry := m.methods[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", methodStyle.Render(entry.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue - q quit"))
	}

	return b.String()
}

func (m *inspectorModel) formatMethod(e methodEntry) string {
	opCount := fmt.Sprintf("%d ops", len(e.opcodes))
	if e.decodeErr != nil {
		opCount = opStyle.Render("decode error: " + e.decodeErr.Error())
	}
	return methodStyle.Render(e.name+e.descriptor) + " " + typeStyle.Render("["+opCount+"]")
}

// paramTypes mirrors interpreter's descriptor-to-width-marker split, kept as
// its own small copy here since the interpreter package does not export it
// and the inspector only needs to know arg count/kind, not the full
// call-frame placement logic.
func paramTypes(descriptor string) []byte {
	var params []byte
	i := 1
	for i < len(descriptor) && descriptor[i] != ')' {
		switch descriptor[i] {
		case 'L':
			params = append(params, 'L')
			for i < len(descriptor) && descriptor[i] != ';' {
				i++
			}
			i++
		case '[':
			for i < len(descriptor) && descriptor[i] == '[' {
				i++
			}
			if i < len(descriptor) && descriptor[i] == 'L' {
				for i < len(descriptor) && descriptor[i] != ';' {
					i++
				}
			}
			params = append(params, '[')
			i++
		default:
			params = append(params, descriptor[i])
			i++
		}
	}
	return params
}

func paramTypeStr(t byte) string {
	switch t {
	case 'I':
		return "int"
	case 'J':
		return "long"
	case 'F':
		return "float"
	case 'D':
		return "double"
	case 'Z':
		return "boolean"
	case 'B':
		return "byte"
	case 'C':
		return "char"
	case 'S':
		return "short"
	case 'L':
		return "ref"
	case '[':
		return "array"
	default:
		return "?"
	}
}

// parseArg converts one textinput's raw string into the vm.Value a
// placeArgs-style frame setup expects for that parameter's width. Reference
// and array parameters are always passed as null — the inspector has no way
// to construct a heap object from a terminal prompt.
func parseArg(t byte, raw string) vm.Value {
	switch t {
	case 'J':
		v, _ := strconv.ParseInt(raw, 10, 64)
		return vm.LongVal(v)
	case 'F':
		v, _ := strconv.ParseFloat(raw, 32)
		return vm.FloatVal(float32(v))
	case 'D':
		v, _ := strconv.ParseFloat(raw, 64)
		return vm.DoubleVal(v)
	case 'L', '[':
		return vm.RefVal(nil)
	default:
		v, _ := strconv.ParseInt(raw, 10, 32)
		return vm.IntVal(int32(v))
	}
}

func runInspector(filename string, cf *classfile.ClassFile) error {
	p := tea.NewProgram(newInspectorModel(filename, cf), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
