package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/QwQ3213/ACELimiter/internal/config"
	"github.com/QwQ3213/ACELimiter/internal/errors"
	"github.com/QwQ3213/ACELimiter/internal/events"
	"github.com/QwQ3213/ACELimiter/internal/limiter"
	"github.com/QwQ3213/ACELimiter/internal/logging"
	"github.com/QwQ3213/ACELimiter/internal/process"
	"github.com/QwQ3213/ACELimiter/internal/util"
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			MarginBottom(1)

	statusOkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8BE9FD"))

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF5555"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	tableStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))
)

// runModel is the state of the monitor TUI
type runModel struct {
	svc            *limiter.Service
	interval       time.Duration
	processSpinner spinner.Model
	processTable   table.Model
	records        []process.Record
	message        string
	activity       string
	err            error
}

func initialRunModel(svc *limiter.Service, interval time.Duration) runModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	columns := []table.Column{
		{Title: "PID", Width: 10},
		{Title: "Name", Width: 24},
		{Title: "Status", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	t.SetStyles(table.Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#7D56F4")),
	})

	return runModel{
		svc:            svc,
		interval:       interval,
		processSpinner: s,
		processTable:   t,
	}
}

func (m runModel) Init() tea.Cmd {
	return tea.Batch(
		m.processSpinner.Tick,
		scanCmd(m.svc),
	)
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "s":
			m.message = "Scanning..."
			return m, scanCmd(m.svc)
		case "l":
			m.message = "Limiting..."
			return m, limitAllCmd(m.svc)
		case "m":
			if m.svc.IsMonitorRunning() {
				m.svc.StopMonitor()
				m.message = "Monitor stop requested"
			} else if m.svc.StartMonitor(m.interval) {
				m.message = "Monitor started"
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.processTable, cmd = m.processTable.Update(msg)
		return m, cmd

	case busEventMsg:
		// The cycle already scanned; reuse its records instead of enumerating again
		m.records = m.svc.Records()
		m.processTable.SetRows(recordRows(m.records))
		if msg.name == events.ProcessUpdated {
			m.message = fmt.Sprintf("Monitor limited new process(es), %d limited this session", len(m.svc.LimitedPIDs()))
		}
		return m, nil

	case journalMsg:
		m.activity = formatActivity(msg.event)
		return m, nil

	case recordsMsg:
		m.records = msg.records
		m.message = msg.message
		m.processTable.SetRows(recordRows(m.records))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.processSpinner, cmd = m.processSpinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m runModel) View() string {
	title := titleStyle.Render("ACELimiter")

	var status string
	if m.svc.IsMonitorRunning() {
		status = statusOkStyle.Render(fmt.Sprintf("%s Monitoring every %v", m.processSpinner.View(), m.interval))
	} else {
		status = statusErrorStyle.Render("Monitor stopped")
	}

	lastScan := "never"
	if ms, ok := m.svc.LastScanTime(); ok {
		lastScan = time.UnixMilli(ms).Format("15:04:05")
	}
	info := m.svc.SystemInfo()
	details := mutedStyle.Render(fmt.Sprintf("Last scan: %s | CPUs: %d | pinned to core %d | limited this session: %d",
		lastScan, info.CPUCount, info.LastCoreIndex, len(m.svc.LimitedPIDs())))

	view := title + "\n" + status + "\n" + details + "\n\n" +
		tableStyle.Render(m.processTable.View()) + "\n"
	if m.message != "" {
		view += m.message + "\n"
	}
	if m.activity != "" {
		view += mutedStyle.Render("Last activity: "+m.activity) + "\n"
	}
	return view + "\n" + mutedStyle.Render("s scan • l limit all • m start/stop monitor • q quit")
}

// Custom messages
type busEventMsg struct {
	name string
}

type recordsMsg struct {
	records []process.Record
	message string
}

type journalMsg struct {
	event logging.JournalEvent
}

func formatActivity(event logging.JournalEvent) string {
	line := event.Timestamp.Format("15:04:05") + " " + event.EventType
	if event.ProcessID != 0 {
		line += fmt.Sprintf(" %s (PID %d)", event.ProcessName, event.ProcessID)
	}
	if event.Message != "" {
		line += ": " + event.Message
	}
	return line
}

func recordRows(records []process.Record) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		status := "Not limited"
		if r.Adjusted {
			status = "Limited"
		} else if r.Error != "" {
			status = "Failed: " + r.Error
		}
		rows = append(rows, table.Row{fmt.Sprintf("%d", r.PID), r.Name, status})
	}
	return rows
}

// Commands
func scanCmd(svc *limiter.Service) tea.Cmd {
	return func() tea.Msg {
		records := svc.ScanProcesses()
		return recordsMsg{records: records, message: fmt.Sprintf("Found %d ACE process(es)", len(records))}
	}
}

func limitAllCmd(svc *limiter.Service) tea.Cmd {
	return func() tea.Msg {
		records := svc.LimitAll()
		failed := 0
		for _, r := range records {
			if !r.Adjusted {
				failed++
			}
		}
		return recordsMsg{
			records: records,
			message: fmt.Sprintf("Limited %d of %d process(es)", len(records)-failed, len(records)),
		}
	}
}

func newRunCommand() *cobra.Command {
	var (
		nonInteractive bool
		interval       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the background monitor",
		Long: `Start the monitor loop, which limits every ACE process it finds and checks
again on a fixed interval until stopped.

In a terminal an interactive view is shown; with --non-interactive (or when
output is not a terminal) activity is logged instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if interval <= 0 {
				interval = cfg.Monitor.Interval()
			}

			if !nonInteractive && !isTerminal(os.Stdout) {
				nonInteractive = true
			}

			if !nonInteractive {
				// Keep log lines off the alternate screen
				logging.InitLogger("[acelimiter]", cfg.Verbose)
				logging.DefaultLogger.SetOutput(io.Discard)
			}

			bus := events.NewBus()
			svc, journal, cleanup, err := newService(cfg, bus)
			if err != nil {
				return err
			}

			if nonInteractive {
				return runNonInteractive(svc, bus, interval, cleanup)
			}
			return runInteractive(cfg, svc, bus, journal, interval, cleanup)
		},
	}

	cmd.Flags().BoolVarP(&nonInteractive, "non-interactive", "n", false, "Log activity instead of showing the interactive view")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Monitor interval (overrides monitor.intervalMs)")

	return cmd
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// runNonInteractive logs every cycle until a termination signal arrives
func runNonInteractive(svc *limiter.Service, bus *events.Bus, interval time.Duration, cleanup func()) error {
	logger := logging.DefaultLogger

	bus.Subscribe(func(name string) {
		switch name {
		case events.ProcessUpdated:
			logger.Infof("Limited processes: %v", svc.LimitedPIDs())
		case events.ScanCompleted:
			logger.Debugf("Monitor cycle completed, %d process(es) limited so far", len(svc.LimitedPIDs()))
		}
	})

	handler := util.NewShutdownHandler(logger, 5*time.Second)
	handler.RegisterShutdownFunc(func() error {
		cleanup()
		return nil
	})
	handler.RegisterShutdownFunc(func() error {
		svc.Shutdown()
		return nil
	})
	handler.HandleShutdown()

	if !svc.StartMonitor(interval) {
		return errors.MonitorError("monitor already running")
	}
	logger.Infof("Monitoring for %v every %v, press Ctrl+C to stop", process.TargetNames, interval)

	<-handler.Done()
	return nil
}

// runInteractive shows the TUI; the monitor is stopped when it exits
func runInteractive(cfg *config.Config, svc *limiter.Service, bus *events.Bus, journal *logging.Journal, interval time.Duration, cleanup func()) error {
	defer cleanup()
	defer svc.Shutdown()

	if cfg.Monitor.AutoStart {
		svc.StartMonitor(interval)
	}

	p := tea.NewProgram(initialRunModel(svc, interval), tea.WithAltScreen())
	unsubscribe := bus.Subscribe(func(name string) {
		p.Send(busEventMsg{name: name})
	})
	defer unsubscribe()

	journal.AddListener(func(event logging.JournalEvent) {
		p.Send(journalMsg{event: event})
	})

	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "error running interactive view")
	}
	return nil
}
