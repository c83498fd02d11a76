// Package mapper converts between the cart HTTP API's wire DTOs and the
// domain model.
package mapper

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/sugarloaf/cakecart/internal/domains/cart/domain"
	"github.com/sugarloaf/cakecart/internal/domains/cart/ports"
)

var (
	ErrAmbiguousCakeRef = errors.New("exactly one of available_cake_id and custom_cake_id must be set")
)

// AddItemRequest is the add-to-cart payload.
type AddItemRequest struct {
	BakeryID        string   `json:"bakery_id" binding:"required"`
	AvailableCakeID string   `json:"available_cake_id"`
	CustomCakeID    string   `json:"custom_cake_id"`
	Name            string   `json:"name"`
	Note            string   `json:"note"`
	ImageRef        string   `json:"image_ref"`
	Size            string   `json:"size"`
	AddOns          []string `json:"add_ons"`
	Quantity        int32    `json:"quantity"`
	UnitPriceCents  int64    `json:"unit_price_cents"`
}

// EditItemRequest carries a replacement configuration for one line.
type EditItemRequest struct {
	Name     string   `json:"name"`
	Note     string   `json:"note"`
	ImageRef string   `json:"image_ref"`
	Size     string   `json:"size"`
	AddOns   []string `json:"add_ons"`
}

// QuantityRequest sets a line's quantity; zero or below removes it.
type QuantityRequest struct {
	Quantity int32 `json:"quantity"`
}

// ToCandidate builds the domain candidate from an add request.
func ToCandidate(req AddItemRequest) (domain.CartItem, error) {
	var ref domain.CakeRef
	switch {
	case req.AvailableCakeID != "" && req.CustomCakeID != "":
		return domain.CartItem{}, ErrAmbiguousCakeRef
	case req.AvailableCakeID != "":
		ref = domain.AvailableCake(req.AvailableCakeID)
	case req.CustomCakeID != "":
		ref = domain.CustomCake(req.CustomCakeID)
	default:
		return domain.CartItem{}, ErrAmbiguousCakeRef
	}
	return domain.CartItem{
		Ref:            ref,
		BakeryID:       req.BakeryID,
		Config:         toConfig(req.Name, req.Note, req.ImageRef, req.Size, req.AddOns),
		Quantity:       req.Quantity,
		UnitPriceCents: req.UnitPriceCents,
	}, nil
}

// ToConfig builds the domain configuration from an edit request.
func ToConfig(req EditItemRequest) domain.ItemConfig {
	return toConfig(req.Name, req.Note, req.ImageRef, req.Size, req.AddOns)
}

func toConfig(name, note, imageRef, size string, addOns []string) domain.ItemConfig {
	return domain.ItemConfig{
		Name:     name,
		Note:     note,
		ImageRef: imageRef,
		Size:     domain.SizeTier(size),
		AddOns:   addOns,
	}
}

// ItemView is one rendered cart line.
type ItemView struct {
	ID              string   `json:"id"`
	BakeryID        string   `json:"bakery_id"`
	AvailableCakeID string   `json:"available_cake_id,omitempty"`
	CustomCakeID    string   `json:"custom_cake_id,omitempty"`
	Name            string   `json:"name"`
	Note            string   `json:"note,omitempty"`
	ImageRef        string   `json:"image_ref,omitempty"`
	Size            string   `json:"size"`
	AddOns          []string `json:"add_ons,omitempty"`
	UnitPriceCents  int64    `json:"unit_price_cents"`
	Quantity        int32    `json:"quantity"`
	SubTotalCents   int64    `json:"sub_total_cents"`
}

// SwitchView describes a pending bakery switch awaiting user confirmation.
type SwitchView struct {
	FromBakeryID string    `json:"from_bakery_id"`
	ToBakeryID   string    `json:"to_bakery_id"`
	Candidate    ItemView  `json:"candidate"`
	RequestedAt  time.Time `json:"requested_at"`
}

// CartView is the full cart snapshot handed to the UI.
type CartView struct {
	Items         []ItemView      `json:"items"`
	BakeryID      string          `json:"bakery_id,omitempty"`
	SyncState     string          `json:"sync_state"`
	PendingSwitch *SwitchView     `json:"pending_switch,omitempty"`
	CheckoutMeta  json.RawMessage `json:"checkout_meta,omitempty"`
	TotalCents    int64           `json:"total_cents"`
}

// OutcomeView is the add-attempt envelope: accepted carries the resulting
// line, needsConfirmation carries the pending switch.
type OutcomeView struct {
	Status string      `json:"status"`
	Item   *ItemView   `json:"item,omitempty"`
	Switch *SwitchView `json:"switch,omitempty"`
}

// FromSnapshot renders the store snapshot.
func FromSnapshot(snap ports.Snapshot) CartView {
	view := CartView{
		Items:        make([]ItemView, 0, len(snap.Items)),
		BakeryID:     snap.BakeryID,
		SyncState:    string(snap.SyncState),
		CheckoutMeta: snap.CheckoutMeta,
		TotalCents:   snap.TotalCents,
	}
	for _, item := range snap.Items {
		view.Items = append(view.Items, fromItem(item))
	}
	if snap.PendingSwitch != nil {
		sw := fromSwitch(*snap.PendingSwitch)
		view.PendingSwitch = &sw
	}
	return view
}

// FromOutcome renders an add outcome.
func FromOutcome(outcome ports.AddOutcome) OutcomeView {
	view := OutcomeView{Status: string(outcome.Status)}
	if outcome.Item != nil {
		item := fromItem(*outcome.Item)
		view.Item = &item
	}
	if outcome.Switch != nil {
		sw := fromSwitch(*outcome.Switch)
		view.Switch = &sw
	}
	return view
}

// FromItem renders a single line.
func FromItem(item domain.CartItem) ItemView { return fromItem(item) }

func fromItem(item domain.CartItem) ItemView {
	view := ItemView{
		ID:             item.ID,
		BakeryID:       item.BakeryID,
		Name:           item.Config.Name,
		Note:           item.Config.Note,
		ImageRef:       item.Config.ImageRef,
		Size:           string(item.Config.Size),
		AddOns:         item.Config.AddOns,
		UnitPriceCents: item.UnitPriceCents,
		Quantity:       item.Quantity,
		SubTotalCents:  item.SubTotalCents(),
	}
	switch item.Ref.Kind {
	case domain.CakeKindAvailable:
		view.AvailableCakeID = item.Ref.ID
	case domain.CakeKindCustom:
		view.CustomCakeID = item.Ref.ID
	}
	return view
}

func fromSwitch(request domain.SwitchRequest) SwitchView {
	return SwitchView{
		FromBakeryID: request.FromBakeryID,
		ToBakeryID:   request.ToBakeryID,
		Candidate:    fromItem(request.Candidate),
		RequestedAt:  request.RequestedAt,
	}
}
