// Package entity defines candlestick pattern types and their display metadata.
package entity

// PatternType identifies a candlestick shape.
// The Three Inside and Three Outside types are catalogued but not emitted by the analyzer.
type PatternType string

const (
	BullishEngulfing   PatternType = "BULLISH_ENGULFING"
	MorningStar        PatternType = "MORNING_STAR"
	ThreeWhiteSoldiers PatternType = "THREE_WHITE_SOLDIERS"
	PiercingLine       PatternType = "PIERCING_LINE"
	Hammer             PatternType = "HAMMER"
	InvertedHammer     PatternType = "INVERTED_HAMMER"
	BullishHarami      PatternType = "BULLISH_HARAMI"
	BullishKicker      PatternType = "BULLISH_KICKER"
	ThreeInsideUp      PatternType = "THREE_INSIDE_UP"
	ThreeOutsideUp     PatternType = "THREE_OUTSIDE_UP"

	BearishEngulfing PatternType = "BEARISH_ENGULFING"
	EveningStar      PatternType = "EVENING_STAR"
	ThreeBlackCrows  PatternType = "THREE_BLACK_CROWS"
	DarkCloudCover   PatternType = "DARK_CLOUD_COVER"
	ShootingStar     PatternType = "SHOOTING_STAR"
	HangingMan       PatternType = "HANGING_MAN"
	BearishHarami    PatternType = "BEARISH_HARAMI"
	BearishKicker    PatternType = "BEARISH_KICKER"
	ThreeInsideDown  PatternType = "THREE_INSIDE_DOWN"
	ThreeOutsideDown PatternType = "THREE_OUTSIDE_DOWN"

	WhiteMarubozu PatternType = "WHITE_MARUBOZU"
	BlackMarubozu PatternType = "BLACK_MARUBOZU"
	Doji          PatternType = "DOJI"
	SpinningTop   PatternType = "SPINNING_TOP"
)

// Bias is the direction a pattern suggests.
type Bias string

const (
	BiasBullish Bias = "bullish"
	BiasBearish Bias = "bearish"
	BiasNeutral Bias = "neutral"
)

// Info is the display metadata of a pattern. Reliability ranges from 1 (weak) to 5 (strong).
type Info struct {
	Name        string
	Description string
	Bias        Bias
	Reliability int
}

var catalog = map[PatternType]Info{
	BullishEngulfing:   {"Bullish Engulfing", "Today's white body fully wraps yesterday's black body; strong buying has arrived.", BiasBullish, 5},
	MorningStar:        {"Morning Star", "A white candle follows a gap-down star at the end of a decline, signalling a reversal.", BiasBullish, 5},
	ThreeWhiteSoldiers: {"Three White Soldiers", "Three white candles in a row, each closing higher.", BiasBullish, 5},
	PiercingLine:       {"Piercing Line", "A white candle opens below the prior low and closes above the midpoint of the prior black body.", BiasBullish, 4},
	Hammer:             {"Hammer", "A long lower shadow near a bottom suggests buyers stepped in.", BiasBullish, 3},
	InvertedHammer:     {"Inverted Hammer", "An attempted rally near a bottom; needs confirmation the next day.", BiasBullish, 2},
	BullishHarami:      {"Bullish Harami", "A small white candle sits inside the prior black candle; the decline is stalling.", BiasBullish, 2},
	BullishKicker:      {"Bullish Kicker", "A white candle gaps above the prior black candle's high; an abrupt reversal.", BiasBullish, 4},
	ThreeInsideUp:      {"Three Inside Up", "A bullish harami confirmed by a white candle the next day.", BiasBullish, 4},
	ThreeOutsideUp:     {"Three Outside Up", "A bullish engulfing confirmed by a white candle the next day.", BiasBullish, 4},

	BearishEngulfing: {"Bearish Engulfing", "Today's black body fully wraps yesterday's white body; strong selling has arrived.", BiasBearish, 5},
	EveningStar:      {"Evening Star", "A black candle follows a gap-up star at the end of a rally, signalling a reversal.", BiasBearish, 5},
	ThreeBlackCrows:  {"Three Black Crows", "Three black candles in a row, each closing lower.", BiasBearish, 5},
	DarkCloudCover:   {"Dark Cloud Cover", "A black candle opens above the prior high and closes below the midpoint of the prior white body.", BiasBearish, 4},
	ShootingStar:     {"Shooting Star", "A long upper shadow near a top suggests sellers pushed back.", BiasBearish, 3},
	HangingMan:       {"Hanging Man", "A long lower shadow near a top; buying is weakening.", BiasBearish, 2},
	BearishHarami:    {"Bearish Harami", "A small black candle sits inside the prior white candle; the rally is stalling.", BiasBearish, 2},
	BearishKicker:    {"Bearish Kicker", "A black candle gaps below the prior white candle's low; an abrupt reversal.", BiasBearish, 4},
	ThreeInsideDown:  {"Three Inside Down", "A bearish harami confirmed by a black candle the next day.", BiasBearish, 4},
	ThreeOutsideDown: {"Three Outside Down", "A bearish engulfing confirmed by a black candle the next day.", BiasBearish, 4},

	WhiteMarubozu: {"White Marubozu", "A white candle with almost no shadows; buyers dominated the session.", BiasBullish, 3},
	BlackMarubozu: {"Black Marubozu", "A black candle with almost no shadows; sellers dominated the session.", BiasBearish, 3},
	Doji:          {"Doji", "Open and close are nearly equal; buyers and sellers are balanced.", BiasNeutral, 1},
	SpinningTop:   {"Spinning Top", "A short body with long shadows; the market is searching for direction.", BiasNeutral, 1},
}

// Info returns the metadata of p. Unknown types yield a zero-reliability neutral entry.
func (p PatternType) Info() Info {
	if info, ok := catalog[p]; ok {
		return info
	}
	return Info{Name: string(p), Bias: BiasNeutral}
}

// Match is one detected pattern on the candle dated Date (YYYYMMDD).
type Match struct {
	Type PatternType
	Date string
}
