package executor

import (
	"github.com/bklimczak/aaicore/engine/callback"
)

// groupReissueSuppressionFrames is how long Executor waits before letting
// the same group re-issue a movement order (spec §4.I order-rate limiter).
const groupReissueSuppressionFrames = 30

// OrderLog tracks the last frame an order was given to a unit or group, so
// repeat movement orders can be suppressed (spec §4.I give_order).
type OrderLog struct {
	issued        int
	lastOrderFrame map[int]int
}

// NewOrderLog returns an empty order log.
func NewOrderLog() *OrderLog {
	return &OrderLog{lastOrderFrame: make(map[int]int)}
}

// GiveOrder issues cmd to unit and stamps its last-order frame (spec §4.I
// give_order).
func (l *OrderLog) GiveOrder(eng callback.Engine, unit int, cmd callback.Command, currentFrame int) {
	l.issued++
	l.lastOrderFrame[unit] = currentFrame
	eng.GiveOrder(unit, cmd)
}

// IssuedCount returns how many orders GiveOrder has issued in total.
func (l *OrderLog) IssuedCount() int { return l.issued }

// ShouldReissueGroupOrder reports whether enough frames have passed since
// groupID's last movement order to re-issue one (spec §4.I: group movement
// re-issues are suppressed for 30 frames).
func (l *OrderLog) ShouldReissueGroupOrder(groupID int, currentFrame int) bool {
	last, ok := l.lastOrderFrame[groupID]
	if !ok {
		return true
	}
	return currentFrame-last >= groupReissueSuppressionFrames
}
