package terminal

import (
	"context"
	"strings"
)

// DeliveryView renders the delivery assignment panel.
type DeliveryView interface {
	RenderAgents(agents []DeliveryGuy)
	ShowAddressForm(agent DeliveryGuy)
	SetSubmitEnabled(enabled bool)
	Close()
}

// DeliveryPanel assigns the sale to a delivery agent. Search is server-side;
// the panel never filters locally.
type DeliveryPanel struct {
	session  *Session
	view     DeliveryView
	selected *DeliveryGuy
}

func NewDeliveryPanel(session *Session, view DeliveryView) *DeliveryPanel {
	return &DeliveryPanel{session: session, view: view}
}

func (p *DeliveryPanel) Selected() *DeliveryGuy { return p.selected }

// Open refuses held and empty sales before fetching the agent list.
func (p *DeliveryPanel) Open(ctx context.Context) bool {
	if p.session.held {
		p.session.notify.Error("Cannot assign delivery while the sale is on hold")
		return false
	}
	if p.session.cart.Len() == 0 {
		p.session.notify.Error("Cannot assign delivery for an empty sale")
		return false
	}
	p.Search(ctx, "")
	return true
}

func (p *DeliveryPanel) Search(ctx context.Context, query string) {
	agents, err := p.session.client.DeliveryGuys(ctx, query)
	if err != nil {
		p.session.notify.Error(err.Error())
		return
	}
	p.view.RenderAgents(agents)
}

// Select rejects busy agents without touching the current selection.
func (p *DeliveryPanel) Select(agent DeliveryGuy) {
	if agent.ActiveDelivery {
		p.session.notify.Error(agent.Name + " is currently busy with another delivery")
		return
	}
	p.selected = &agent
	p.view.ShowAddressForm(agent)
	p.view.SetSubmitEnabled(true)
}

// Submit assigns the delivery and proceeds through the same printing and
// redirect flow as any other completion. On failure the submit control is
// re-enabled; nothing was committed, so there is no rollback.
func (p *DeliveryPanel) Submit(ctx context.Context, address, notes string) {
	if p.selected == nil {
		p.session.notify.Error("Select a delivery guy first")
		return
	}
	if strings.TrimSpace(address) == "" {
		p.session.notify.Error("Delivery address is required")
		return
	}

	p.view.SetSubmitEnabled(false)
	p.session.modalActive = true

	res, err := p.session.client.AssignDelivery(ctx, p.selected.ID, address, notes)
	if err != nil {
		p.session.modalActive = false
		p.view.SetSubmitEnabled(true)
		p.session.notify.Error(err.Error())
		return
	}

	p.view.Close()
	p.session.modal.ShowPrinting()
	if res.Message != "" {
		p.session.notify.Success(res.Message)
	}
	p.session.finishCompleted(res)
}
