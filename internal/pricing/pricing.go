package pricing

import (
	"fmt"
	"math"

	"paintquote_backend/internal/models"
)

// RateCard holds the per-m2 rates a quote is computed from. It is
// built once from config at startup and treated as read-only.
type RateCard struct {
	WallPrep      float64
	WallPrimer    float64
	WallPaint     float64
	CeilingPrep   float64
	CeilingPrimer float64
	CeilingPaint  float64

	// Multiplier applied to the paint rate for the second coat,
	// e.g. 0.8 means the second coat costs 80% of the first.
	SecondCoatDiscount float64

	VATRate float64
}

// LineItem is a single priced row of a quote.
type LineItem struct {
	RoomName    string
	Description string
	AreaM2      float64
	Rate        float64
	Amount      float64
}

// Totals are the quote-level sums derived from the line items.
type Totals struct {
	Subtotal  float64
	VATAmount float64
	Total     float64
}

// Compute turns measured rooms and their treatment selections into
// priced line items. Rooms without any selected treatment contribute
// nothing; a surface with zero area contributes nothing even when
// treatments are selected for it.
func Compute(rooms []models.RoomMeasurement, card RateCard) ([]LineItem, Totals) {
	var items []LineItem

	for i := range rooms {
		room := &rooms[i]
		items = append(items, surfaceItems(room.Name, "Wall", room.WallSurfaceM2, room.WallSelection(),
			card.WallPrep, card.WallPrimer, card.WallPaint, card.SecondCoatDiscount)...)
		items = append(items, surfaceItems(room.Name, "Ceiling", room.CeilingAreaM2, room.CeilingSelection(),
			card.CeilingPrep, card.CeilingPrimer, card.CeilingPaint, card.SecondCoatDiscount)...)
	}

	var totals Totals
	for _, it := range items {
		totals.Subtotal = roundCents(totals.Subtotal + it.Amount)
	}
	totals.VATAmount = roundCents(totals.Subtotal * card.VATRate)
	totals.Total = roundCents(totals.Subtotal + totals.VATAmount)

	return items, totals
}

func surfaceItems(roomName, surface string, area float64, sel models.TreatmentSelection,
	prepRate, primerRate, paintRate, secondCoat float64) []LineItem {

	if area <= 0 {
		return nil
	}

	var items []LineItem
	add := func(desc string, rate float64) {
		items = append(items, LineItem{
			RoomName:    roomName,
			Description: desc,
			AreaM2:      area,
			Rate:        rate,
			Amount:      roundCents(area * rate),
		})
	}

	if sel.Prep {
		add(fmt.Sprintf("%s preparation", surface), prepRate)
	}
	if sel.Primer {
		add(fmt.Sprintf("%s primer", surface), primerRate)
	}
	// Two coats supersedes one coat when both are set
	if sel.PaintTwoCoats {
		add(fmt.Sprintf("%s paint, two coats", surface), roundCents(paintRate*(1+secondCoat)))
	} else if sel.PaintOneCoat {
		add(fmt.Sprintf("%s paint, one coat", surface), paintRate)
	}

	return items
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
