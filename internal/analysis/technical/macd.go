package technical

import "github.com/Alias1177/tradecore/internal/model"

// MACD calculates the MACD line, signal line and histogram from precomputed fast and slow EMAs
func MACD(fast, slow model.Series, signalPeriod int) (line, signal, hist model.Series) {
	n := len(fast)
	line = model.NewSeries(n)
	for i := 0; i < n; i++ {
		f, ok1 := fast.At(i)
		s, ok2 := slow.At(i)
		if ok1 && ok2 {
			line[i] = f - s
		}
	}

	signal = EMA(line, signalPeriod)
	hist = model.NewSeries(n)
	for i := 0; i < n; i++ {
		l, ok1 := line.At(i)
		s, ok2 := signal.At(i)
		if ok1 && ok2 {
			hist[i] = l - s
		}
	}
	return line, signal, hist
}
