package cli

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/logminer/internal/client/stream"
)

// tailOnAttach is how many buffered records are replayed when watching
// starts.
const tailOnAttach = 20

// Watch looks the server up and, when it is running, prints its live log
// stream until Enter is pressed. The stream keeps running in the background
// afterwards so a later watch of the same server resumes from its buffer.
func (a *App) Watch(ctx context.Context, id string) error {
	srv, err := a.api.GetServer(ctx, id)
	if err != nil {
		return err
	}

	sess, err := a.monitor.Watch(ctx, id, srv.AutoRefresh())
	if sess == nil && err == nil {
		printlnFn(a.render.FormatState(stream.State{Phase: stream.PhaseIdle}))
		return nil
	}
	if err != nil {
		if sess != nil {
			printlnFn(a.render.FormatState(sess.State()))
		}
		return err
	}

	a.attach(id, sess)
	defer a.detach()

	printlnFn("Press Enter to stop watching")
	if _, err := readLine(ctx, a.scanner); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (a *App) attach(id string, sess *stream.Session) {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()

	a.watching = id
	a.live = true

	recs := sess.Tail(tailOnAttach)
	a.watermark = -1
	if len(recs) > 0 {
		a.watermark = recs[len(recs)-1].ID
	}

	_ = a.render.State(sess.State())
	_ = a.render.Records(recs)
}

func (a *App) detach() {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	a.live = false
	a.watching = ""
}

func (a *App) onRecord(rec stream.Record) {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	if !a.live || rec.ServerID != a.watching || rec.ID <= a.watermark {
		return
	}
	_ = a.render.Record(rec)
}

func (a *App) onState(st stream.State) {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	if !a.live {
		return
	}
	_ = a.render.State(st)
}
