// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/poiesic/icdmap"
	"github.com/poiesic/icdmap/icd10"
	"github.com/poiesic/icdmap/search"
)

// relatedLimit is how many classification neighbors the detail panel shows.
const relatedLimit = 5

type focusArea int

const (
	focusInput focusArea = iota
	focusResults
)

// resultItem adapts a search match to bubbles/list.Item.
type resultItem struct {
	match *search.Match
}

func (i resultItem) Title() string       { return i.match.Code }
func (i resultItem) Description() string { return i.match.Description }
func (i resultItem) FilterValue() string { return i.match.Code + " " + i.match.Description }

// resultDelegate renders one match per line.
type resultDelegate struct{}

func (d resultDelegate) Height() int                               { return 1 }
func (d resultDelegate) Spacing() int                              { return 0 }
func (d resultDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d resultDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(resultItem)
	if !ok {
		return
	}

	badge := headerStyle.Render("header")
	if it.match.Billable {
		badge = billableStyle.Render("billable")
	}
	line := fmt.Sprintf("%s %s  %s  %s",
		codeStyle.Render(fmt.Sprintf("%-8s", it.match.Code)),
		scoreStyle.Render(fmt.Sprintf("%.3f", it.match.Score)),
		it.match.Description,
		badge,
	)

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

type searchDoneMsg struct {
	query   string
	matches []*search.Match
	took    time.Duration
	err     error
}

type relatedDoneMsg struct {
	code    string
	matches []*search.Match
	err     error
}

// browseModel is the interactive search screen: a diagnosis input on top, a
// result list below, and a detail panel for the selected code.
type browseModel struct {
	index *icdmap.Index
	topK  int

	input   textinput.Model
	results list.Model
	focus   focusArea

	detail     *search.Match
	related    []*search.Match
	relatedErr string

	status    string
	errLine   string
	searching bool
	width     int
}

func newBrowseModel(index *icdmap.Index, topK int) browseModel {
	if topK <= 0 {
		topK = search.DefaultTopK
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "e.g. type 2 diabetes with neuropathy"
	ti.CharLimit = 200
	ti.Focus()

	l := list.New(nil, resultDelegate{}, 80, 16)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return browseModel{
		index:   index,
		topK:    topK,
		input:   ti,
		results: l,
		focus:   focusInput,
		status:  "Type a diagnosis and press enter.",
		width:   80,
	}
}

func (m browseModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 6
		m.results.SetSize(msg.Width-2, msg.Height-7)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.detail != nil {
			return m.updateDetail(msg)
		}
		if m.focus == focusInput {
			return m.updateInput(msg)
		}
		return m.updateResults(msg)

	case searchDoneMsg:
		m.searching = false
		if msg.err != nil {
			m.errLine = msg.err.Error()
			m.status = ""
			return m, m.results.SetItems(nil)
		}
		m.errLine = ""
		items := make([]list.Item, 0, len(msg.matches))
		for _, match := range msg.matches {
			items = append(items, resultItem{match: match})
		}
		cmd := m.results.SetItems(items)
		m.results.Select(0)
		if len(msg.matches) == 0 {
			m.status = fmt.Sprintf("No suggestions for %q. Try adding detail.", msg.query)
			return m, cmd
		}
		plural := "s"
		if len(msg.matches) == 1 {
			plural = ""
		}
		m.status = fmt.Sprintf("%d suggestion%s in %d ms", len(msg.matches), plural, msg.took.Milliseconds())
		m.focus = focusResults
		m.input.Blur()
		return m, cmd

	case relatedDoneMsg:
		// Drop answers for a detail panel that is no longer open.
		if m.detail == nil || icd10.Normalize(msg.code) != icd10.Normalize(m.detail.Code) {
			return m, nil
		}
		if msg.err != nil {
			m.relatedErr = "related codes unavailable"
			return m, nil
		}
		m.related = msg.matches
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusInput {
		m.input, cmd = m.input.Update(msg)
	} else {
		m.results, cmd = m.results.Update(msg)
	}
	return m, cmd
}

func (m browseModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// First esc clears the query, a second one quits.
		if m.input.Value() != "" {
			m.input.SetValue("")
			m.errLine = ""
			return m, nil
		}
		return m, tea.Quit
	case "enter":
		if m.searching {
			return m, nil
		}
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			m.errLine = "Enter a diagnosis."
			return m, nil
		}
		m.errLine = ""
		m.searching = true
		m.status = "Searching..."
		return m, m.searchCmd(query)
	case "tab", "down":
		if len(m.results.Items()) > 0 {
			m.focus = focusResults
			m.input.Blur()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m browseModel) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "tab":
		m.focus = focusInput
		return m, m.input.Focus()
	case "enter":
		if item, ok := m.results.SelectedItem().(resultItem); ok {
			m.detail = item.match
			m.related = nil
			m.relatedErr = ""
			return m, m.relatedCmd(item.match.Code)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m browseModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "q":
		m.detail = nil
		m.related = nil
		m.relatedErr = ""
	}
	return m, nil
}

func (m browseModel) searchCmd(query string) tea.Cmd {
	index, topK := m.index, m.topK
	return func() tea.Msg {
		start := time.Now()
		matches, err := index.Search(context.Background(), query, topK)
		return searchDoneMsg{query: query, matches: matches, took: time.Since(start), err: err}
	}
}

func (m browseModel) relatedCmd(code string) tea.Cmd {
	index := m.index
	return func() tea.Msg {
		matches, err := index.Related(context.Background(), code, relatedLimit)
		return relatedDoneMsg{code: code, matches: matches, err: err}
	}
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("icdmap"))
	b.WriteString(" ")
	b.WriteString(mutedStyle.Render("diagnosis to ICD-10-CM"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.errLine != "":
		b.WriteString(errorStyle.Render(m.errLine))
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")

	if m.detail != nil {
		b.WriteString(m.detailView())
	} else {
		b.WriteString(m.results.View())
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.helpLine()))
	return b.String()
}

func (m browseModel) detailView() string {
	d := m.detail
	var b strings.Builder

	badge := headerStyle.Render("header")
	if d.Billable {
		badge = billableStyle.Render("billable")
	}
	b.WriteString(fmt.Sprintf("%s  %s  %s\n", codeStyle.Render(d.Code), d.Description, badge))

	if chapter, err := icd10.ChapterByNumber(d.Chapter); err == nil {
		b.WriteString(fmt.Sprintf("Chapter %d  %s\n", chapter.Number, chapter.Title))
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("score %.3f  lexical %.3f  coherence %.3f", d.Score, d.LexicalScore, d.Coherence))
	if d.SemanticScore > 0 {
		b.WriteString(fmt.Sprintf("  semantic %.3f", d.SemanticScore))
	}
	b.WriteString("\n")
	if d.Justification != "" {
		b.WriteString(mutedStyle.Render(d.Justification))
		b.WriteString("\n")
	}

	b.WriteString("\nRelated codes\n")
	switch {
	case m.relatedErr != "":
		b.WriteString(mutedStyle.Render(m.relatedErr) + "\n")
	case m.related == nil:
		b.WriteString(mutedStyle.Render("loading...") + "\n")
	case len(m.related) == 0:
		b.WriteString(mutedStyle.Render("none") + "\n")
	default:
		for _, r := range m.related {
			b.WriteString(fmt.Sprintf("  %s %s\n", codeStyle.Render(fmt.Sprintf("%-8s", r.Code)), r.Description))
		}
	}

	return panelStyle.Width(m.width - 4).Render(b.String())
}

func (m browseModel) helpLine() string {
	switch {
	case m.detail != nil:
		return "esc back"
	case m.focus == focusResults:
		return "up/down select - enter detail - tab back to input - q quit"
	default:
		return "enter search - esc clear/quit"
	}
}

// Run starts the interactive browse screen over an opened index.
func Run(index *icdmap.Index, topK int) error {
	p := tea.NewProgram(newBrowseModel(index, topK), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
