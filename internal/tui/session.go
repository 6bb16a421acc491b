package tui

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	ui "github.com/gizak/termui/v3"

	"github.com/nicolastakashi/stats-viewer/internal/controller"
)

// Session ties the terminal view to a controller runtime and keeps track of
// the focused list.
type Session struct {
	runtime *controller.Runtime
	view    *View
	focus   int
}

func NewSession(view *View, settings controller.Settings, fetcher controller.Fetcher, opts ...controller.RuntimeOption) *Session {
	return &Session{
		runtime: controller.NewRuntime(settings, fetcher, view, opts...),
		view:    view,
	}
}

func (s *Session) Init(ctx context.Context) {
	s.runtime.Init(ctx)
	s.refresh()
}

func (s *Session) Focused() controller.DropdownID {
	order := s.view.Focusable()
	if len(order) == 0 {
		return controller.MetricDropdown
	}
	return order[s.focus%len(order)]
}

// HandleKey applies a key press and reports whether the session should end.
func (s *Session) HandleKey(ctx context.Context, key string) bool {
	action := ActionFor(key, s.view.Alerting())
	slog.Debug("key pressed", "key", key, "action", action)

	n := len(s.view.Focusable())
	switch action {
	case ActionQuit:
		return true
	case ActionDismiss:
		s.view.Dismiss()
	case ActionFocusNext:
		s.focus = (s.focus + 1) % n
	case ActionFocusPrev:
		s.focus = (s.focus + n - 1) % n
	case ActionUp:
		s.move(ctx, -1)
	case ActionDown:
		s.move(ctx, 1)
	case ActionToggle:
		s.toggle(ctx)
	case ActionGo:
		s.runtime.Handle(ctx, controller.GoClicked{})
	case ActionNone:
		return false
	}
	s.refresh()
	return false
}

// HandleResult feeds a completed fetch back into the runtime.
func (s *Session) HandleResult(ctx context.Context, ev controller.Event) {
	s.runtime.Handle(ctx, ev)
	s.refresh()
}

func (s *Session) State() controller.State {
	return s.runtime.State()
}

func (s *Session) move(ctx context.Context, delta int) {
	id := s.Focused()
	row := s.view.SetCursor(id, s.view.Cursor(id)+delta)
	// Multiple selections are toggled with space.
	if id.Multiple() || len(s.runtime.State().Dropdown(id).Options) == 0 {
		return
	}
	s.runtime.Handle(ctx, controller.Selected{Dropdown: id, Indices: []int{row}})
}

// toggle adds or removes the highlighted option from a multi-selection.
func (s *Session) toggle(ctx context.Context) {
	id := s.Focused()
	if !id.Multiple() {
		return
	}
	row := s.view.Cursor(id)
	selected := s.runtime.State().Dropdown(id).Selected
	var next []int
	if i := slices.Index(selected, row); i >= 0 {
		next = slices.Delete(slices.Clone(selected), i, i+1)
	} else {
		next = append(slices.Clone(selected), row)
	}
	s.runtime.Handle(ctx, controller.Selected{Dropdown: id, Indices: next})
}

func (s *Session) refresh() {
	s.view.SetFocus(s.Focused())
	s.view.SyncSelection(s.runtime.State())
	s.view.Render()
}

// Run takes over the terminal and processes key presses and fetch results
// until the user quits or ctx is done.
func Run(ctx context.Context, s *Session) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("failed to init terminal: %w", err)
	}
	defer ui.Close()

	width, height := ui.TerminalDimensions()
	s.view.Resize(width, height)
	s.Init(ctx)

	events := ui.PollEvents()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-events:
			switch e.Type {
			case ui.ResizeEvent:
				payload := e.Payload.(ui.Resize)
				s.view.Resize(payload.Width, payload.Height)
				ui.Clear()
				s.view.Render()
			case ui.KeyboardEvent:
				if s.HandleKey(ctx, e.ID) {
					return nil
				}
			}
		case ev := <-s.runtime.Results():
			s.HandleResult(ctx, ev)
		}
	}
}
