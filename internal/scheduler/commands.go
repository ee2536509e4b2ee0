package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"TradeSentinel/internal/notifier"
	"TradeSentinel/internal/position"
	"TradeSentinel/internal/recorder"
)

const helpText = `Commands:
• /status
• /watch SYMBOL
• /open SYMBOL YYYY-MM-DD PRICE
• /close SYMBOL
• /eval SYMBOL
• /history SYMBOL
• /run`

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	// "/status@MyBot" in group chats
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/status":
		return notifier.FormatPositions(s.Book.List())

	case "/watch":
		if len(args) != 1 {
			return "Usage: /watch SYMBOL"
		}
		if err := s.Book.Watch(args[0]); err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		sym := strings.ToUpper(args[0])
		s.recordEvent(&recorder.PositionEvent{Symbol: sym, EventType: "WATCH"})
		return fmt.Sprintf("👀 Watching %s", sym)

	case "/open":
		if len(args) != 3 {
			return "Usage: /open SYMBOL YYYY-MM-DD PRICE"
		}
		price, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Sprintf("❌ invalid price %q", args[2])
		}
		p, err := s.Book.Open(args[0], args[1], price)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		s.recordEvent(&recorder.PositionEvent{
			Symbol: p.Symbol, EventType: "OPEN",
			Note: fmt.Sprintf("%s @ %s", p.EntryDate, notifier.Price(p.EntryPrice)),
		})
		return fmt.Sprintf("✅ Opened %s on %s @ %s", p.Symbol, p.EntryDate, notifier.Price(p.EntryPrice))

	case "/close":
		if len(args) != 1 {
			return "Usage: /close SYMBOL"
		}
		p, err := s.Book.Close(args[0])
		if errors.Is(err, position.ErrPositionNotFound) {
			return fmt.Sprintf("%s is not tracked", strings.ToUpper(args[0]))
		}
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		s.recordEvent(&recorder.PositionEvent{Symbol: p.Symbol, EventType: "CLOSE"})
		return fmt.Sprintf("🗑 Closed %s", p.Symbol)

	case "/eval":
		if len(args) != 1 {
			return "Usage: /eval SYMBOL"
		}
		ev, err := s.EvaluateSymbol(ctx, uuid.NewString(), args[0])
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		bars := ev.Series.Bars
		return notifier.FormatEvaluation(ev.Symbol, ev.Analysis, ev.Result, bars[len(bars)-1].Close)

	case "/history":
		if len(args) != 1 {
			return "Usage: /history SYMBOL"
		}
		sym := strings.ToUpper(args[0])
		records, err := s.Recorder.History(sym, 10)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatHistory(sym, records)

	case "/run":
		s.RunNow()
		return ""

	default:
		return helpText
	}
}
