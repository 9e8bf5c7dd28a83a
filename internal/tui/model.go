// Package tui provides the Bubble Tea attendance interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/skiptrack/internal/model"
	"github.com/verte-zerg/skiptrack/internal/stats"
	"github.com/verte-zerg/skiptrack/internal/store"
	"github.com/verte-zerg/skiptrack/internal/validator"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirm
)

const (
	inputName = iota
	inputCredits
)

const (
	msgFillAllFields  = "Fill all fields"
	msgInvalidCredits = "Credits must be 2, 3, or 4"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	selectedCardStyle = cardStyle.Copy().BorderForeground(lipgloss.Color("#C89A3A"))
	atCapCardStyle    = cardStyle.Copy().BorderForeground(lipgloss.Color("#D32F2F"))
	cardTitleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	cardSubtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	atCapValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#D32F2F")).Bold(true)
	modalStyle        = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#C89A3A")).
				Padding(1, 2)
)

// Model implements the Bubble Tea course list UI.
type Model struct {
	ctx   context.Context
	store *store.Courses
	log   zerolog.Logger

	courses []model.Course
	cursor  int
	mode    mode
	errMsg  string

	inputs     []textinput.Model
	inputIndex int
	formErr    string

	body   viewport.Model
	width  int
	height int
}

// NewModel constructs the UI over st and loads the current courses.
func NewModel(ctx context.Context, st *store.Courses, log zerolog.Logger) *Model {
	m := &Model{
		ctx:   ctx,
		store: st,
		log:   log.With().Str("component", "tui").Logger(),
		body:  viewport.New(0, 0),
	}
	m.initInputs()
	m.reload()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "up", "k":
			m.moveCursor(-1)
		case "down", "j":
			m.moveCursor(1)
		case "+", "=":
			m.adjust(1)
		case "-":
			m.adjust(-1)
		case "n":
			return m.startForm()
		case "d":
			if len(m.courses) > 0 {
				m.mode = modeConfirm
			}
		}
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	switch m.mode {
	case modeForm:
		return m.placeModal(m.renderForm())
	case modeConfirm:
		return m.placeModal(m.renderConfirm())
	}
	if m.width == 0 || m.height == 0 {
		return strings.Join([]string{m.renderHeader(), m.renderCards(), m.renderFooter()}, "\n")
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.body.View(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initInputs() {
	m.inputs = []textinput.Model{
		newFormInput("Name: ", "Calculus", 64),
		newFormInput("Credits: ", "2, 3 or 4", 1),
	}
}

func newFormInput(prompt, placeholder string, limit int) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = limit
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) reload() {
	courses, err := m.store.ReadAll(m.ctx)
	if err != nil {
		m.setError("load courses", err)
		courses = nil
	}
	m.courses = courses
	if m.cursor >= len(m.courses) {
		m.cursor = maxInt(0, len(m.courses)-1)
	}
	m.updateLayout()
}

func (m *Model) setError(op string, err error) {
	m.log.Error().Err(err).Str("op", op).Msg("course update failed")
	m.errMsg = fmt.Sprintf("Failed to %s: %v", op, err)
}

func (m *Model) moveCursor(delta int) {
	if len(m.courses) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.courses) {
		m.cursor = len(m.courses) - 1
	}
	m.updateLayout()
}

func (m *Model) selected() (model.Course, bool) {
	if m.cursor < 0 || m.cursor >= len(m.courses) {
		return model.Course{}, false
	}
	return m.courses[m.cursor], true
}

func (m *Model) adjust(delta int) {
	course, ok := m.selected()
	if !ok {
		return
	}
	m.errMsg = ""
	if err := m.store.AdjustCounter(m.ctx, course.ID, delta); err != nil {
		m.setError("update course", err)
		return
	}
	m.reload()
}

func (m *Model) startForm() (tea.Model, tea.Cmd) {
	m.mode = modeForm
	m.formErr = ""
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	return m, m.setInputIndex(inputName)
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		m.formErr = ""
		return m, nil
	case tea.KeyEnter:
		return m.submitForm()
	case tea.KeyTab, tea.KeyDown:
		return m, m.setInputIndex(m.inputIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setInputIndex(m.inputIndex - 1)
	}
	var cmd tea.Cmd
	m.inputs[m.inputIndex], cmd = m.inputs[m.inputIndex].Update(msg)
	return m, cmd
}

func (m *Model) submitForm() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.inputs[inputName].Value())
	creditsInput := strings.TrimSpace(m.inputs[inputCredits].Value())
	if name == "" || creditsInput == "" {
		m.formErr = msgFillAllFields
		return m, nil
	}
	credits, err := strconv.Atoi(creditsInput)
	if err != nil {
		m.formErr = msgInvalidCredits
		return m, nil
	}
	if _, err := model.CapForCredits(credits); err != nil {
		m.formErr = msgInvalidCredits
		return m, nil
	}
	course, err := m.store.Create(m.ctx, name, credits)
	if err != nil {
		var verr *validator.Error
		if errors.As(err, &verr) {
			m.formErr = verr.Error()
			return m, nil
		}
		m.log.Error().Err(err).Str("op", "add").Msg("course update failed")
		m.formErr = fmt.Sprintf("Failed to add course: %v", err)
		return m, nil
	}
	m.log.Info().Int64("id", course.ID).Str("name", course.Name).Int("cap", course.Cap).Msg("course added")
	m.mode = modeList
	m.formErr = ""
	m.errMsg = ""
	m.reload()
	m.selectID(course.ID)
	return m, nil
}

func (m *Model) selectID(id int64) {
	for i, c := range m.courses {
		if c.ID == id {
			m.cursor = i
		}
	}
	m.updateLayout()
}

func (m *Model) setInputIndex(idx int) tea.Cmd {
	count := len(m.inputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.inputIndex = idx
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.inputIndex {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.mode = modeList
		course, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.errMsg = ""
		if err := m.store.Delete(m.ctx, course.ID); err != nil {
			m.setError("delete course", err)
			return m, nil
		}
		m.log.Info().Int64("id", course.ID).Msg("course deleted")
		m.reload()
	case "n", "N", "esc":
		m.mode = modeList
	}
	return m, nil
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = 2
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.body.Width = m.width
	m.body.Height = bodyHeight
	m.body.SetContent(m.renderCards())
	m.scrollToCursor()
}

// scrollToCursor keeps the selected card inside the viewport.
func (m *Model) scrollToCursor() {
	if len(m.courses) == 0 {
		m.body.GotoTop()
		return
	}
	cardHeight := lipgloss.Height(m.renderCard(m.courses[m.cursor], true))
	top := m.cursor * cardHeight
	bottom := top + cardHeight
	if top < m.body.YOffset {
		m.body.SetYOffset(top)
	} else if bottom > m.body.YOffset+m.body.Height {
		m.body.SetYOffset(bottom - m.body.Height)
	}
}

func (m *Model) renderHeader() string {
	s := stats.Summarize(m.courses)
	title := titleStyle.Render("Attendance")
	summary := headerStyle.Render(fmt.Sprintf("%d courses  %d missed  %d at cap", s.Courses, s.Missed, s.AtCap))
	return title + "\n" + summary
}

func (m *Model) renderCards() string {
	if len(m.courses) == 0 {
		return headerStyle.Render("No courses yet. Press n to add one.")
	}
	cards := make([]string, 0, len(m.courses))
	for i, c := range m.courses {
		cards = append(cards, m.renderCard(c, i == m.cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (m *Model) renderCard(c model.Course, selected bool) string {
	style := cardStyle
	valueStyle := cardValueStyle
	if c.AtCap() {
		style = atCapCardStyle
		valueStyle = atCapValueStyle
	}
	if selected {
		style = selectedCardStyle
	}
	width := maxInt(20, minInt(m.width-2, 60))
	lines := []string{
		cardTitleStyle.Render(c.Name),
		cardSubtitleStyle.Render(fmt.Sprintf("Limit: %d Skips", c.Cap)),
		valueStyle.Render(fmt.Sprintf("Missed: %d", c.Missed)),
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Move: up/down  Skip: +/-  New: n  Delete: d  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderForm() string {
	lines := []string{titleStyle.Render("New Course")}
	for _, input := range m.inputs {
		lines = append(lines, input.View())
	}
	lines = append(lines, headerStyle.Render("tab: next field  enter: add  esc: cancel"))
	if m.formErr != "" {
		lines = append(lines, errorStyle.Render(m.formErr))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderConfirm() string {
	name := ""
	if course, ok := m.selected(); ok {
		name = course.Name
	}
	lines := []string{
		titleStyle.Render("Delete Course"),
		fmt.Sprintf("Are you sure you want to delete %s?", name),
		headerStyle.Render("y: delete  n/esc: cancel"),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) placeModal(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(content)
	return fitLines(lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box), m.width, m.height)
}

func modalWidth(width int) int {
	return maxInt(30, minInt(width-4, 60))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
