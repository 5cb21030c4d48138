// README: Best-effort mirroring of order activity into the audit channel.
package ticket

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"mensa/internal/config"
	"mensa/internal/types"
)

// Auditor copies order summaries and stage changes into the configured
// audit channel. Every call is best-effort: a failed mirror is logged and
// never affects the operation that triggered it.
type Auditor struct {
	gw   Gateway
	chat types.ChatID
	loc  *time.Location
	log  *logrus.Logger
}

func NewAuditor(gw Gateway, chat config.ChatConfig, log *logrus.Logger) *Auditor {
	return &Auditor{
		gw:   gw,
		chat: types.ChatID(chat.AuditChatID),
		loc:  chat.Location(),
		log:  log,
	}
}

// Mirror sends text to the audit channel, prefixed with a local timestamp.
// It returns the message id on success and nil when mirroring is disabled
// or failed.
func (a *Auditor) Mirror(ctx context.Context, text string) *types.MessageID {
	if a == nil || a.chat == 0 {
		return nil
	}
	stamped := time.Now().In(a.loc).Format("2006-01-02 15:04") + "\n" + text
	id, err := a.gw.Send(ctx, a.chat, stamped, 0, nil)
	if err != nil {
		a.log.Warnf("audit mirror failed: %v", err)
		return nil
	}
	return &id
}
