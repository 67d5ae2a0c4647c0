package terminal

import (
	"context"
	"net/http"
	"testing"
)

type fakeDeliveryView struct {
	agents        []DeliveryGuy
	formAgent     *DeliveryGuy
	submitEnabled bool
	closed        bool
}

func (v *fakeDeliveryView) RenderAgents(agents []DeliveryGuy) { v.agents = agents }
func (v *fakeDeliveryView) ShowAddressForm(agent DeliveryGuy) { v.formAgent = &agent }
func (v *fakeDeliveryView) SetSubmitEnabled(enabled bool)     { v.submitEnabled = enabled }
func (v *fakeDeliveryView) Close()                            { v.closed = true }

func deliveryHandler(assigns *int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/delivery/guys":
			writeJSON(w, `{"success":true,"delivery_guys":[
				{"id":"dg1","name":"Odhiambo","phone":"0711000000","active_delivery":false},
				{"id":"dg2","name":"Wanjiku","phone":"0722000000","active_delivery":true}]}`)
		case r.PostFormValue("action") == "scan_barcode":
			writeJSON(w, soapScanReply)
		case r.PostFormValue("action") == "assign_delivery":
			*assigns++
			writeJSON(w, `{"success":true,"sale_number":"SALE-20260829-0007","delivery_number":"DEL-AB12CD34","print_success":true,"message":"Delivery assigned to Odhiambo"}`)
		}
	}
}

func TestDeliveryOpenGuards(t *testing.T) {
	assigns := 0
	h := newHarness(t, deliveryHandler(&assigns))
	view := &fakeDeliveryView{}
	panel := NewDeliveryPanel(h.session, view)

	if panel.Open(context.Background()) {
		t.Error("panel opened on an empty sale")
	}

	h.session.HandleScan(context.Background(), "123456789012")
	if !panel.Open(context.Background()) {
		t.Error("panel refused a non-empty sale")
	}
	if len(view.agents) != 2 {
		t.Errorf("agents rendered = %d, want 2", len(view.agents))
	}
}

func TestSelectingBusyAgentRejected(t *testing.T) {
	assigns := 0
	h := newHarness(t, deliveryHandler(&assigns))
	view := &fakeDeliveryView{}
	panel := NewDeliveryPanel(h.session, view)
	h.session.HandleScan(context.Background(), "123456789012")
	panel.Open(context.Background())

	available, busy := view.agents[0], view.agents[1]

	panel.Select(busy)
	if panel.Selected() != nil {
		t.Error("busy agent selection must not change selection")
	}
	if len(h.notifier.errors) != 1 {
		t.Errorf("errors = %v", h.notifier.errors)
	}

	panel.Select(available)
	if panel.Selected() == nil || panel.Selected().ID != "dg1" {
		t.Errorf("selected = %+v", panel.Selected())
	}
	if view.formAgent == nil {
		t.Error("address form not shown for available agent")
	}
}

func TestDeliverySubmitRequiresAddress(t *testing.T) {
	assigns := 0
	h := newHarness(t, deliveryHandler(&assigns))
	view := &fakeDeliveryView{}
	panel := NewDeliveryPanel(h.session, view)
	h.session.HandleScan(context.Background(), "123456789012")
	panel.Open(context.Background())
	panel.Select(view.agents[0])

	panel.Submit(context.Background(), "   ", "")

	if assigns != 0 {
		t.Errorf("assignment sent without address")
	}
}

func TestDeliverySubmitCompletesAndRedirects(t *testing.T) {
	assigns := 0
	h := newHarness(t, deliveryHandler(&assigns))
	view := &fakeDeliveryView{}
	panel := NewDeliveryPanel(h.session, view)
	h.session.HandleScan(context.Background(), "123456789012")
	panel.Open(context.Background())
	panel.Select(view.agents[0])

	panel.Submit(context.Background(), "Bondo Town, opposite the market", "Call on arrival")

	if assigns != 1 {
		t.Fatalf("assignments = %d, want 1", assigns)
	}
	if !view.closed {
		t.Error("panel not closed on success")
	}
	if len(h.redirects) != 1 {
		t.Errorf("redirects = %v", h.redirects)
	}
}

func TestDeliverySubmitFailureReenables(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/delivery/guys":
			writeJSON(w, `{"success":true,"delivery_guys":[{"id":"dg1","name":"Odhiambo","phone":"0711000000","active_delivery":false}]}`)
		case r.PostFormValue("action") == "scan_barcode":
			writeJSON(w, soapScanReply)
		case r.PostFormValue("action") == "assign_delivery":
			writeJSON(w, `{"success":false,"error":"Delivery guy Odhiambo is currently busy with another delivery"}`)
		}
	})
	view := &fakeDeliveryView{}
	panel := NewDeliveryPanel(h.session, view)
	h.session.HandleScan(context.Background(), "123456789012")
	panel.Open(context.Background())
	panel.Select(view.agents[0])

	panel.Submit(context.Background(), "Bondo Town", "")

	if !view.submitEnabled {
		t.Error("submit control not re-enabled after failure")
	}
	if h.session.ModalActive() {
		t.Error("modal lock held after failed assignment")
	}
	if len(h.redirects) != 0 {
		t.Errorf("failed assignment must not redirect, got %v", h.redirects)
	}
}
