package strategy

import (
	"fmt"

	"TradeSentinel/internal/calculator"
	"TradeSentinel/internal/model"
)

const (
	confirmDays       = 3
	failDays          = 7
	structureATRBound = 1.5
	keyEMAPeriod      = 20
)

// ClassifyPostEntry derives the lifecycle state of a position entered at
// bars[entryIdx] for entryPrice. An undefined ATR counts as a zero buffer.
// An undefined lowest low or EMA20 keeps the position waiting.
func ClassifyPostEntry(bars []model.Bar, entryIdx int, entryPrice, atr float64) model.PostEntryAnalysis {
	last := len(bars) - 1
	if entryIdx < 0 || entryIdx > last {
		return model.PostEntryAnalysis{State: model.StateNotEntered, Note: "entry not found in history"}
	}
	if !calculator.Defined(atr) {
		atr = 0
	}
	closes := model.Closes(bars)
	lowest := calculator.LowestSince(model.Lows(bars), entryIdx)
	ema := calculator.Last(calculator.EMA(closes, keyEMAPeriod))

	pa := model.PostEntryAnalysis{
		DaysHeld:        last - entryIdx,
		StructureIntact: lowest > entryPrice-structureATRBound*atr,
		AboveKeyEMA:     closes[last] > ema,
	}
	switch {
	case pa.DaysHeld < confirmDays:
		pa.State = model.StateWaitingConfirmation
		pa.Note = fmt.Sprintf("Day %d/3-7: waiting", pa.DaysHeld)
	case !calculator.Defined(lowest, entryPrice):
		pa.State = model.StateWaitingConfirmation
		pa.Note = "structure unavailable"
	case !pa.StructureIntact:
		pa.State = model.StateFailed
		pa.Note = "structure broken"
	case !calculator.Defined(ema, closes[last]):
		pa.State = model.StateWaitingConfirmation
		pa.Note = "EMA20 unavailable"
	case !pa.AboveKeyEMA && pa.DaysHeld >= failDays:
		pa.State = model.StateFailed
		pa.Note = "failed to hold above EMA20"
	case pa.AboveKeyEMA && pa.StructureIntact:
		pa.State = model.StateConfirmed
		pa.Note = "confirmed: structure intact above EMA20"
	default:
		pa.State = model.StateWaitingConfirmation
		pa.Note = "monitoring"
	}
	return pa
}
