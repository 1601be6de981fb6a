package model

import "time"

// SignalDirection is the side a scan signal suggests.
type SignalDirection string

const (
	DirectionBuy  SignalDirection = "BUY"
	DirectionSell SignalDirection = "SELL"
)

// ScanSignal is emitted by the live scanner when a symbol's latest bar
// satisfies the full rule set. Target and StopLoss are ATR-derived.
// Confidence is a randomized 70-95 score attached by the scanner daemon and
// carries no determinism guarantee.
type ScanSignal struct {
	Symbol     string          `json:"symbol"`
	Price      float64         `json:"price"`
	Direction  SignalDirection `json:"direction"`
	Target     float64         `json:"target"`
	StopLoss   float64         `json:"stop_loss"`
	Indicator  string          `json:"indicator"`
	Confidence int             `json:"confidence"`
	TS         time.Time       `json:"ts"`
}
