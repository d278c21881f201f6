package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/kaviraj-dev/strikebot/pkg/exchange"
	"github.com/kaviraj-dev/strikebot/pkg/logger"
)

// Status is the observable snapshot of one instance.
type Status struct {
	ID              string
	Signal          core.Signal
	SupertrendValue float64
	HTFDirection    int
	Position        *core.Position
}

// Orchestrator drives an ordered set of instances against one shared
// candle feed. Evaluation is synchronous and in stable order, so every
// instance sees consistent shared counters before acting. One failing
// instance never stops the rest.
type Orchestrator struct {
	instances []*Instance
	shared    *Shared
	log       logger.Logger
}

func NewOrchestrator(shared *Shared, log logger.Logger, instances ...*Instance) *Orchestrator {
	return &Orchestrator{
		instances: instances,
		shared:    shared,
		log:       log,
	}
}

// Shared exposes the shared guards.
func (o *Orchestrator) Shared() *Shared { return o.shared }

// Instances returns the instances in evaluation order.
func (o *Orchestrator) Instances() []*Instance { return o.instances }

// Instance finds an instance by id.
func (o *Orchestrator) Instance(id string) (*Instance, error) {
	for _, inst := range o.instances {
		if inst.ID() == id {
			return inst, nil
		}
	}
	return nil, fmt.Errorf("unknown strategy instance %q", id)
}

// OnBaseCandle feeds a closed base-timeframe candle to every instance in
// order. Returns true when any instance exited a position.
func (o *Orchestrator) OnBaseCandle(ctx context.Context, candle core.Candle) bool {
	exited := false
	for _, inst := range o.instances {
		if o.safeEval(inst, func() bool { return inst.OnCandleClose(ctx, candle, o.shared) }) {
			exited = true
		}
	}
	return exited
}

// OnHTFCandle feeds a closed higher-timeframe candle to every instance.
func (o *Orchestrator) OnHTFCandle(candle core.Candle) {
	for _, inst := range o.instances {
		o.safeEval(inst, func() bool {
			inst.OnHTFCandle(candle)
			return false
		})
	}
}

// OnTick runs the protective exits for every instance. Returns true when
// any instance exited.
func (o *Orchestrator) OnTick(ctx context.Context) bool {
	exited := false
	for _, inst := range o.instances {
		if o.safeEval(inst, func() bool { return inst.OnTick(ctx, o.shared) }) {
			exited = true
		}
	}
	return exited
}

// safeEval isolates a per-instance evaluation panic so the remaining
// instances still evaluate in the same close.
func (o *Orchestrator) safeEval(inst *Instance, fn func() bool) (result bool) {
	defer func() {
		if r := recover(); r != nil {
			o.log.WithField("strategy", inst.ID()).Errorf("instance evaluation panicked: %v", r)
			result = false
		}
	}()
	return fn()
}

// SquareOffAll force-closes every open position.
func (o *Orchestrator) SquareOffAll(ctx context.Context) {
	for _, inst := range o.instances {
		if err := inst.SquareOff(ctx, o.shared); err != nil {
			o.log.WithField("strategy", inst.ID()).WithError(err).Error("square-off failed")
		}
	}
}

// SquareOff force-closes one instance's position by id.
func (o *Orchestrator) SquareOff(ctx context.Context, id string) error {
	inst, err := o.Instance(id)
	if err != nil {
		return err
	}
	return inst.SquareOff(ctx, o.shared)
}

// DailyReset clears the shared counters once per trading day.
func (o *Orchestrator) DailyReset(now time.Time) {
	if o.shared.Reset(exchange.TradingDay(now)) {
		o.log.Infof("daily counters reset for %s", exchange.TradingDay(now))
	}
}

// OpenPositions counts instances currently holding a position.
func (o *Orchestrator) OpenPositions() int {
	n := 0
	for _, inst := range o.instances {
		if inst.Position() != nil {
			n++
		}
	}
	return n
}

// Statuses snapshots every instance for observability.
func (o *Orchestrator) Statuses() []Status {
	out := make([]Status, 0, len(o.instances))
	for _, inst := range o.instances {
		out = append(out, Status{
			ID:              inst.ID(),
			Signal:          inst.Signal(),
			SupertrendValue: inst.SupertrendValue(),
			HTFDirection:    inst.HTFDirection(),
			Position:        inst.Position(),
		})
	}
	return out
}
