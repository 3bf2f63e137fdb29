package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/dinobot/internal/bot"
)

const placeholderText = "Type a message or command..."

var (
	youStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	fieldStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

// ConsoleUI is the BubbleTea model that runs the local chat loop.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	dispatcher *bot.Dispatcher
	prefix     string

	viewport viewport.Model
	textarea textarea.Model
	history  []string
	lastBot  string
	status   string
	ready    bool
	width    int
	height   int
}

// NewConsoleUI builds the model. The viewport is sized on the first
// WindowSizeMsg.
func NewConsoleUI(dispatcher *bot.Dispatcher, prefix string) *ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = placeholderText
	ta.Focus()
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	return &ConsoleUI{
		dispatcher: dispatcher,
		prefix:     prefix,
		textarea:   ta,
		history: []string{
			statusStyle.Render(fmt.Sprintf("Local console. Try %shelp. Ctrl+Y copies the last reply, Ctrl+C quits.", prefix)),
		},
	}
}

func (ui *ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (ui *ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		taCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		ui.width = msg.Width
		ui.height = msg.Height
		if !ui.ready {
			ui.viewport = viewport.New(msg.Width, msg.Height-4)
			ui.ready = true
		} else {
			ui.viewport.Width = msg.Width
			ui.viewport.Height = msg.Height - 4
		}
		ui.textarea.SetWidth(msg.Width)
		ui.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return ui, tea.Quit
		case tea.KeyCtrlY:
			if ui.lastBot != "" {
				if err := clipboard.WriteAll(ui.lastBot); err != nil {
					ui.status = "Copy failed: " + err.Error()
				} else {
					ui.status = "Copied last reply."
				}
				ui.refresh()
			}
		case tea.KeyEnter:
			ui.send(strings.TrimSpace(ui.textarea.Value()))
			ui.textarea.Reset()
		}
	}

	ui.textarea, taCmd = ui.textarea.Update(msg)
	ui.viewport, vpCmd = ui.viewport.Update(msg)
	return ui, tea.Batch(taCmd, vpCmd)
}

func (ui *ConsoleUI) View() string {
	if !ui.ready {
		return "Starting console..."
	}
	status := ui.status
	if status == "" {
		status = fmt.Sprintf("user=%s  prefix=%s", consoleUserID, ui.prefix)
	}
	return fmt.Sprintf("%s\n%s\n%s", ui.viewport.View(), statusStyle.Render(status), ui.textarea.View())
}

// send runs one message through the dispatcher and appends the
// exchange to the transcript.
func (ui *ConsoleUI) send(content string) {
	if content == "" {
		return
	}

	ui.history = append(ui.history, youStyle.Render("You: ")+content)

	replies := ui.dispatcher.HandleMessage(context.Background(), consoleUserID, content)
	if len(replies) == 0 {
		ui.status = ""
		ui.refresh()
		return
	}

	for _, r := range replies {
		rendered := renderReply(r)
		ui.history = append(ui.history, botStyle.Render("Bot: ")+rendered)
		ui.lastBot = rendered
	}
	ui.status = ""
	ui.refresh()
}

func (ui *ConsoleUI) refresh() {
	if !ui.ready {
		return
	}
	width := ui.viewport.Width
	if width <= 0 {
		width = 80
	}
	ui.viewport.SetContent(wordwrap.String(strings.Join(ui.history, "\n\n"), width))
	ui.viewport.GotoBottom()
}

func renderReply(r *bot.Reply) string {
	var b strings.Builder
	if r.Title != "" {
		b.WriteString(titleStyle.Render(r.Title))
		b.WriteString("\n")
	}
	b.WriteString(r.Description)
	for _, f := range r.Fields {
		b.WriteString("\n")
		b.WriteString(fieldStyle.Render(f.Name + ": " + f.Value))
	}
	return b.String()
}
