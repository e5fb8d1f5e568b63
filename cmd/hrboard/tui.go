package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rhinspira/hrboard/pkg/persist"
	"github.com/rhinspira/hrboard/pkg/tui"
)

func runTUI(ctx context.Context) error {
	var p *tea.Program
	send := func(msg tea.Msg) {
		if p != nil {
			p.Send(msg)
		}
	}

	a, err := newApp(ctx, true,
		persist.WithWarningHandler(func(err error) { send(tui.WarningMsg{Err: err}) }),
		persist.WithFlushHook(func(string) { send(tui.FlushedMsg{}) }),
	)
	if err != nil {
		return err
	}
	defer a.Close()

	m := tui.NewModel(ctx, a.board, a.syncer, a.logger)
	p = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if err := a.syncer.Start(ctx); err != nil {
		return err
	}

	if a.watchPath != "" {
		cleanup, err := tui.StartWatcher(a.watchPath, p, a.logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: file watcher failed: %v\n", err)
		} else {
			defer cleanup()
		}
	}

	a.metrics.Serve(ctx, a.logger, a.cfg.MetricsAddr)

	_, runErr := p.Run()

	// Persist whatever changed since the last tick before leaving.
	a.syncer.Stop()
	if err := a.syncer.Flush(context.WithoutCancel(ctx)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: final save failed: %v\n", err)
	}
	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return runErr
}
