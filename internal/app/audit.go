package app

import (
	"context"
	"time"

	"housebot/internal/eventbus"
	"housebot/internal/storage"
	logx "housebot/pkg/logx"
)

func auditEntry(e eventbus.Event, chatID int64) storage.AuditEntry {
	return storage.AuditEntry{
		At:        e.Time,
		Job:       e.Job,
		Cycle:     e.Cycle,
		Kind:      string(e.Type),
		ChatID:    chatID,
		MessageID: e.MessageID,
		Detail:    e.Detail,
		Error:     e.Err,
	}
}

// startAudit persists every bus event. Writes are bounded so a stuck store
// cannot hold events back for long; a failed write is logged and dropped.
func (a *App) startAudit() {
	events, unsub := a.bus.Subscribe(128)
	log := a.log.With(logx.String("comp", "audit"))
	a.sup.Go0("audit.record", func(c context.Context) {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				wctx, cancel := context.WithTimeout(context.WithoutCancel(c), 2*time.Second)
				err := a.store.AppendAudit(wctx, auditEntry(e, a.chat.ChatID))
				cancel()
				if err != nil {
					log.Warn("audit append failed", logx.String("type", string(e.Type)), logx.Err(err))
				}
			}
		}
	})
}
