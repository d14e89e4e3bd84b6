// Package analyzer classifies the latest candles of a series against candlestick shapes.
package analyzer

import (
	candle "chart_backend/internal/feature/candles/domain/entity"
	"chart_backend/internal/feature/patterns/domain/entity"
)

const (
	// MinCandles is the shortest series Analyze will look at.
	MinCandles = 10
	// trendLookback is how many candles back the trend gate compares against.
	trendLookback = 5

	dojiRatio     = 0.03
	marubozuRatio = 0.9
	spinningRatio = 0.3
)

// Analyze returns the patterns formed by the last one to three candles of an ascending series.
// Bullish reversals are only reported in a downtrend and bearish reversals only in an uptrend.
// Shorter series than MinCandles yield no matches.
func Analyze(candles []candle.Candle) []entity.Match {
	n := len(candles)
	if n < MinCandles {
		return nil
	}
	d0, d1, d2 := candles[n-1], candles[n-2], candles[n-3]

	var out []entity.Match
	add := func(p entity.PatternType) {
		out = append(out, entity.Match{Type: p, Date: d0.Date})
	}

	ref := candles[n-1-trendLookback].Close
	down := d0.Open < ref
	up := d0.Open > ref

	if down {
		if hammerShape(d0) {
			add(entity.Hammer)
		}
		if invertedHammerShape(d0) {
			add(entity.InvertedHammer)
		}
		if bullishEngulfing(d1, d0) {
			add(entity.BullishEngulfing)
		}
		if morningStar(d2, d1, d0) {
			add(entity.MorningStar)
		}
		if piercingLine(d1, d0) {
			add(entity.PiercingLine)
		}
		if isBear(d1) && isBull(d0) && inside(d1, d0) {
			add(entity.BullishHarami)
		}
		if isBear(d1) && isBull(d0) && d0.Low > d1.High {
			add(entity.BullishKicker)
		}
		if threeWhiteSoldiers(d2, d1, d0) {
			add(entity.ThreeWhiteSoldiers)
		}
	}

	if up {
		if invertedHammerShape(d0) {
			add(entity.ShootingStar)
		}
		if hammerShape(d0) {
			add(entity.HangingMan)
		}
		if bearishEngulfing(d1, d0) {
			add(entity.BearishEngulfing)
		}
		if eveningStar(d2, d1, d0) {
			add(entity.EveningStar)
		}
		if darkCloudCover(d1, d0) {
			add(entity.DarkCloudCover)
		}
		if isBull(d1) && isBear(d0) && inside(d1, d0) {
			add(entity.BearishHarami)
		}
		if isBull(d1) && isBear(d0) && d0.High < d1.Low {
			add(entity.BearishKicker)
		}
		if threeBlackCrows(d2, d1, d0) {
			add(entity.ThreeBlackCrows)
		}
	}

	if isDoji(d0) {
		add(entity.Doji)
	}
	if isSpinningTop(d0) {
		add(entity.SpinningTop)
	}
	if isMarubozu(d0) {
		switch {
		case isBull(d0):
			add(entity.WhiteMarubozu)
		case isBear(d0):
			add(entity.BlackMarubozu)
		}
	}
	return out
}

func body(c candle.Candle) float64 {
	d := c.Close - c.Open
	if d < 0 {
		d = -d
	}
	return float64(d)
}

func span(c candle.Candle) float64 { return float64(c.High - c.Low) }

func isBull(c candle.Candle) bool { return c.Close > c.Open }
func isBear(c candle.Candle) bool { return c.Close < c.Open }

func upperTail(c candle.Candle) float64 { return float64(c.High - max(c.Open, c.Close)) }
func lowerTail(c candle.Candle) float64 { return float64(min(c.Open, c.Close) - c.Low) }

// midpoint of the real body.
func midpoint(c candle.Candle) float64 { return float64(c.Open+c.Close) / 2 }

func isDoji(c candle.Candle) bool {
	return span(c) > 0 && body(c)/span(c) < dojiRatio
}

func isMarubozu(c candle.Candle) bool {
	return span(c) > 0 && body(c)/span(c) > marubozuRatio
}

func isSpinningTop(c candle.Candle) bool {
	return span(c) > 0 && body(c)/span(c) < spinningRatio && !isDoji(c)
}

func hammerShape(c candle.Candle) bool {
	return lowerTail(c) >= body(c)*2 && upperTail(c) <= body(c)*0.5
}

func invertedHammerShape(c candle.Candle) bool {
	return upperTail(c) >= body(c)*2 && lowerTail(c) <= body(c)*0.5
}

func bullishEngulfing(prev, cur candle.Candle) bool {
	return isBear(prev) && isBull(cur) && cur.Close > prev.Open && cur.Open < prev.Close
}

func bearishEngulfing(prev, cur candle.Candle) bool {
	return isBull(prev) && isBear(cur) && cur.Open > prev.Close && cur.Close < prev.Open
}

// inside reports whether cur's full range sits strictly within prev's range.
func inside(prev, cur candle.Candle) bool {
	return cur.High < prev.High && cur.Low > prev.Low
}

func piercingLine(prev, cur candle.Candle) bool {
	return isBear(prev) && isBull(cur) &&
		cur.Open < prev.Low &&
		float64(cur.Close) > midpoint(prev) &&
		cur.Close < prev.Open
}

func darkCloudCover(prev, cur candle.Candle) bool {
	return isBull(prev) && isBear(cur) &&
		cur.Open > prev.High &&
		float64(cur.Close) < midpoint(prev) &&
		cur.Close > prev.Open
}

func morningStar(first, star, last candle.Candle) bool {
	gapDown := max(star.Open, star.Close) < first.Close
	return isBear(first) && gapDown && isBull(last) && float64(last.Close) > midpoint(first)
}

func eveningStar(first, star, last candle.Candle) bool {
	gapUp := min(star.Open, star.Close) > first.Close
	return isBull(first) && gapUp && isBear(last) && float64(last.Close) < midpoint(first)
}

func threeWhiteSoldiers(a, b, c candle.Candle) bool {
	return isBull(a) && isBull(b) && isBull(c) && b.Close > a.Close && c.Close > b.Close
}

func threeBlackCrows(a, b, c candle.Candle) bool {
	return isBear(a) && isBear(b) && isBear(c) && b.Close < a.Close && c.Close < b.Close
}
