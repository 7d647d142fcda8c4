package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/heynickashwin-oss/viashift/pkg/flow"
	"github.com/heynickashwin-oss/viashift/pkg/flow/narrative"
	"github.com/heynickashwin-oss/viashift/pkg/flow/transition"
)

// playTickInterval is the terminal animation frame interval (20 fps).
const playTickInterval = 50 * time.Millisecond

// newPlayCmd creates the play command: an interactive terminal player that
// runs the narrative animation over the "before" document and forges into the
// "after" document on demand.
//
// Keys:
//   - space: trigger the before/after forge transition (once the narrative is ready)
//   - q, ctrl+c: quit
func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play [before-file] [after-file]",
		Short: "Play the narrative and forge animation in the terminal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())

			m, err := newPlayModel(args[0], args[1], cfg.NarrativeConfig(), cfg.TransitionConfig())
			if err != nil {
				return err
			}
			p := tea.NewProgram(m, tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}

// tickMsg carries the wall-clock time of one animation frame.
type tickMsg time.Time

func playTick() tea.Cmd {
	return tea.Tick(playTickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// variantSide holds the loaded graph for one side of the forge.
type variantSide struct {
	title string
	graph *flow.Graph
}

// playModel is the bubbletea model for the animation player. Each tick
// samples both controllers; the view is a pure function of the sampled
// states, mirroring how a rendering sink consumes them.
type playModel struct {
	sides   map[narrative.Variant]variantSide
	current narrative.Variant

	story *narrative.Controller
	forge *transition.Controller

	forging  bool
	target   narrative.Variant
	now      time.Time
	quitting bool
}

// newPlayModel loads both documents and arms the narrative for the before
// variant.
func newPlayModel(beforePath, afterPath string, ncfg narrative.Config, tcfg transition.Config) (*playModel, error) {
	sides := make(map[narrative.Variant]variantSide, 2)
	for v, path := range map[narrative.Variant]string{
		narrative.VariantBefore: beforePath,
		narrative.VariantAfter:  afterPath,
	} {
		doc, err := flow.ReadDocumentFile(path)
		if err != nil {
			return nil, err
		}
		g, _, err := doc.Graph()
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		title := doc.Title
		if title == "" {
			title = path
		}
		sides[v] = variantSide{title: title, graph: g}
	}

	story, err := narrative.New(ncfg)
	if err != nil {
		return nil, err
	}
	forge, err := transition.New(tcfg)
	if err != nil {
		return nil, err
	}

	m := &playModel{
		sides:   sides,
		current: narrative.VariantBefore,
		story:   story,
		forge:   forge,
		now:     time.Now(),
	}
	m.arm(m.now)
	return m, nil
}

// arm starts a fresh narrative run over the current side's graph.
func (m *playModel) arm(now time.Time) {
	g := m.sides[m.current].graph
	m.story.Arm(g.Fingerprint(), m.current, g.LayerCount(), len(summaryMetrics(g)), now)
}

func (m *playModel) Init() tea.Cmd {
	return playTick()
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.now = time.Time(msg)
		if m.forging {
			st := m.forge.Sample(m.now)
			if st.Phase == transition.PhaseIdle && st.ExitPhase == transition.ExitGone {
				// Forge run finished: the target side is now current and
				// the narrative restarts over its graph.
				m.forge.Cancel()
				m.forging = false
				m.current = st.Variant
				m.arm(m.now)
			}
		}
		return m, playTick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			m.story.Deactivate()
			m.forge.Cancel()
			return m, tea.Quit
		case " ":
			st := m.story.Sample(m.now)
			if st.ButtonReady && !m.forge.Active() {
				target := m.current.Other()
				g := m.sides[target].graph
				m.story.Deactivate()
				m.forge.Trigger(target, g.LayerCount(), len(summaryMetrics(g)), m.now)
				m.forging = true
				m.target = target
			}
		}
	}
	return m, nil
}

func (m *playModel) View() string {
	if m.quitting {
		return ""
	}
	if m.forging {
		return m.forgeView()
	}
	return m.narrativeView()
}

// narrativeView renders the phase controller state: per-layer draw bars, the
// loss pulse, and the staggered metric reveal.
func (m *playModel) narrativeView() string {
	side := m.sides[m.current]
	st := m.story.Sample(m.now)

	var b strings.Builder
	b.WriteString(StyleTitle.Render(side.title))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%s]", m.current)))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("phase  %s\n\n", StyleValue.Render(st.Phase.String())))

	for i, p := range st.LayerProgress {
		b.WriteString(fmt.Sprintf("layer %d  %s\n", i, renderBar(p, 30, styleBarFill)))
	}

	b.WriteString("\nloss     ")
	if st.LossHighlightActive {
		b.WriteString(renderBar(st.LossPulseIntensity, 30, styleBarPulse))
	} else {
		b.WriteString(renderBar(0, 30, styleBarPulse))
	}
	b.WriteString("\n\n")

	metrics := summaryMetrics(side.graph)
	for i, mt := range metrics {
		if i < st.RevealedMetrics {
			b.WriteString(fmt.Sprintf("  %s %s\n", StyleDim.Render(mt.Label+":"), StyleValue.Render(mt.Value)))
		} else {
			b.WriteString(StyleDim.Render("  ·\n"))
		}
	}

	b.WriteString("\n")
	if st.ButtonReady {
		b.WriteString(StyleSuccess.Render("⏵ space forge  "))
	} else {
		b.WriteString(StyleDim.Render("  space forge  "))
	}
	b.WriteString(StyleDim.Render("q quit"))
	b.WriteString("\n")
	return b.String()
}

// forgeView renders the transition controller state: the outgoing exit
// sub-sequence and the incoming per-layer forge.
func (m *playModel) forgeView() string {
	st := m.forge.Sample(m.now)
	target := m.sides[m.target]

	var b strings.Builder
	b.WriteString(StyleTitle.Render("forging → " + target.title))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("phase  %s\n", StyleValue.Render(st.Phase.String())))
	b.WriteString(fmt.Sprintf("exit   %s\n\n", StyleWarning.Render(st.ExitPhase.String())))

	layers := target.graph.LayerCount()
	for i := 0; i < layers; i++ {
		v := 0.0
		switch {
		case st.ForgeLayer > i:
			v = 1
		case st.ForgeLayer == i:
			v = st.LayerReveal
		}
		b.WriteString(fmt.Sprintf("layer %d  %s\n", i, renderBar(v, 30, styleBarFill)))
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("metrics revealed: %d", st.RevealedMetrics)))
	b.WriteString("\n")
	return b.String()
}
