package terminal

import (
	"context"
	"time"
)

const printerPollInterval = 30 * time.Second

// PrinterPoller reflects hardware printer availability on the sale screen.
type PrinterPoller struct {
	client   *Client
	display  Display
	interval time.Duration
}

func NewPrinterPoller(client *Client, display Display) *PrinterPoller {
	return &PrinterPoller{client: client, display: display, interval: printerPollInterval}
}

// Run checks immediately and then on every tick until the context ends.
func (p *PrinterPoller) Run(ctx context.Context) {
	p.check(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.check(ctx)
		}
	}
}

func (p *PrinterPoller) check(ctx context.Context) {
	ready, message, err := p.client.PrinterStatus(ctx)
	if err != nil {
		p.display.SetPrinterStatus(false, err.Error())
		return
	}
	p.display.SetPrinterStatus(ready, message)
}
