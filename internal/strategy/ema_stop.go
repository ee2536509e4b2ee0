package strategy

import (
	"fmt"

	"TradeSentinel/internal/calculator"
	"TradeSentinel/internal/model"
)

// EMAStop places the stop at the latest EMA of closes.
type EMAStop struct {
	Period int
}

func (s *EMAStop) Name() string { return KindEMA }

// CalculateStop implements Strategy. The entry is ignored.
func (s *EMAStop) CalculateStop(bars []model.Bar, _ *model.Entry) model.StrategyResult {
	res := model.StrategyResult{Strategy: KindEMA}
	n := len(bars)
	res.Trace.Add("bars", n)
	if n < s.Period {
		return insufficient(res, fmt.Sprintf("need at least %d bars for EMA(%d), have %d", s.Period, s.Period, n))
	}
	ema := calculator.Last(calculator.EMA(model.Closes(bars), s.Period))
	if !calculator.Defined(ema) {
		return insufficient(res, "EMA undefined")
	}
	res.StopPrice = ema
	res.Trace.Add("ema_period", s.Period)
	res.Trace.Add("ema_stop", ema)
	return res
}
