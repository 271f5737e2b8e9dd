package cli

import (
	"context"
	"fmt"
)

func (a *App) Server(ctx context.Context, id string) error {
	s, err := a.api.GetServer(ctx, id)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("#%d %s %s://%s:%d", s.ID, s.Name, s.Protocol, s.IPAddress, s.Port))
	printlnFn(fmt.Sprintf("  log %s (%s), status %s", s.LogPath, s.LogType, s.Status))
	return nil
}

func (a *App) StartTailing(ctx context.Context, id string) error {
	if err := a.api.StartTailing(ctx, id); err != nil {
		return err
	}
	printlnFn("Tailing started for server", id)
	return nil
}

func (a *App) StopTailing(ctx context.Context, id string) error {
	if err := a.api.StopTailing(ctx, id); err != nil {
		return err
	}
	printlnFn("Tailing stopped for server", id)
	return nil
}
