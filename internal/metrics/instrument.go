package metrics

import (
	"github.com/LISDEAD/beep/internal/core/bridge"
	"github.com/LISDEAD/beep/internal/core/countdown"
)

type instrumentedController struct {
	next    bridge.Controller
	metrics *Metrics
}

// Instrument counts every command that passes through the controller.
func Instrument(next bridge.Controller, m *Metrics) bridge.Controller {
	return &instrumentedController{next: next, metrics: m}
}

func (controller *instrumentedController) Start() error {
	err := controller.next.Start()
	controller.metrics.RecordCommand("start", err)
	return err
}

func (controller *instrumentedController) Pause() error {
	err := controller.next.Pause()
	controller.metrics.RecordCommand("pause", err)
	return err
}

func (controller *instrumentedController) Reset() error {
	err := controller.next.Reset()
	controller.metrics.RecordCommand("reset", err)
	return err
}

func (controller *instrumentedController) Configure(seconds int) error {
	err := controller.next.Configure(seconds)
	controller.metrics.RecordCommand("configure", err)
	return err
}

func (controller *instrumentedController) Snapshot() (countdown.Snapshot, error) {
	return controller.next.Snapshot()
}
