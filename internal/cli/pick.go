package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	mealyerr "github.com/matzehuels/mealyetf/pkg/errors"
	mio "github.com/matzehuels/mealyetf/pkg/io"
	"github.com/matzehuels/mealyetf/pkg/mealy"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	listErrStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// machineFile summarizes one machine document found in a directory.
type machineFile struct {
	Path        string
	Name        string
	States      int
	Transitions int
	Complete    bool
	Err         error
}

// scanMachines loads every machine document directly inside dir. Files that
// fail to load are kept with Err set.
func scanMachines(dir string) ([]machineFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var files []machineFile
	for _, e := range entries {
		if e.IsDir() || mealyerr.ValidateMachineFilename(e.Name()) != nil {
			continue
		}
		f := machineFile{Path: filepath.Join(dir, e.Name()), Name: e.Name()}
		m, err := mio.Import(f.Path)
		if err != nil {
			f.Err = err
		} else {
			f.States = m.NumStates()
			f.Transitions = m.NumTransitions()
			f.Complete = mealy.Complete[string, string, string](m, m.Inputs())
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// pickMachine asks the user to choose one of files. It returns nil when the
// user quits without choosing.
var pickMachine = func(files []machineFile) (*machineFile, error) {
	final, err := tea.NewProgram(newMachineListModel(files), tea.WithOutput(statusOut)).Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(MachineListModel)
	if !ok {
		return nil, nil
	}
	return m.Selected, nil
}

// resolveInput returns path unchanged unless it names a directory. For a
// directory holding a single loadable machine that file is used; with more
// than one the user picks interactively.
func resolveInput(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return path, nil
	}

	files, err := scanMachines(path)
	if err != nil {
		return "", err
	}
	var loadable []machineFile
	for _, f := range files {
		if f.Err == nil {
			loadable = append(loadable, f)
		}
	}

	switch len(loadable) {
	case 0:
		return "", mealyerr.New(mealyerr.ErrCodeNotFound, "no machine files in %s", path)
	case 1:
		printInfo("Found %s", StyleHighlight.Render(loadable[0].Name))
		return loadable[0].Path, nil
	}

	printInfo("Found %d machine files", len(loadable))
	selected, err := pickMachine(files)
	if err != nil {
		return "", err
	}
	if selected == nil {
		return "", mealyerr.New(mealyerr.ErrCodeInvalidInput, "no machine selected")
	}
	return selected.Path, nil
}

// =============================================================================
// MachineListModel - Interactive machine selection
// =============================================================================

// MachineListModel is the bubbletea model for choosing a machine file.
type MachineListModel struct {
	Files    []machineFile
	Cursor   int
	Selected *machineFile
	Height   int
	Offset   int
}

func newMachineListModel(files []machineFile) MachineListModel {
	return MachineListModel{Files: files, Height: 15}
}

func (m MachineListModel) Init() tea.Cmd {
	return nil
}

func (m MachineListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Files)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			f := m.Files[m.Cursor]
			if f.Err != nil {
				return m, nil
			}
			m.Selected = &f
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m MachineListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Machine"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Files))

	var rows [][]string
	for i := m.Offset; i < end; i++ {
		f := m.Files[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		if f.Err != nil {
			rows = append(rows, []string{cursor, f.Name, "-", "-", mealyerr.UserMessage(f.Err)})
			continue
		}
		complete := "partial"
		if f.Complete {
			complete = "complete"
		}
		rows = append(rows, []string{cursor, f.Name, strconv.Itoa(f.States), strconv.Itoa(f.Transitions), complete})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "File", "States", "Transitions", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Files) {
				return lipgloss.NewStyle()
			}
			f := m.Files[idx]
			base := lipgloss.NewStyle()
			if f.Err != nil {
				base = listErrStyle
			} else if idx == m.Cursor {
				base = base.Foreground(colorGreen)
			}
			if idx == m.Cursor {
				base = base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Files))))

	return b.String()
}
