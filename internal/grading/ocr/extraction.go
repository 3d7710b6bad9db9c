package ocr

import (
	"context"
	"errors"
	"io"

	"github.com/mind-engage/gearscore/internal/affixdb"
	"github.com/mind-engage/gearscore/internal/grading"
)

var (
	// ErrRecognition means the extraction backend could not produce an answer.
	ErrRecognition = errors.New("recognition failed")
	// ErrInvalidRecord means an answer came back but does not fit the expected shape.
	ErrInvalidRecord = errors.New("extracted record is invalid")
)

// Slot counts on a single item.
const (
	MaxBaseSlots   = 3
	MaxTemperSlots = 2
)

// DropExtractor reads a drop off an item screenshot.
type DropExtractor interface {
	ExtractDrop(ctx context.Context, r io.Reader, mimeType string) (DropExtraction, error)
}

// AffixListExtractor turns pasted patch notes or affix lists into reference data.
type AffixListExtractor interface {
	ExtractAffixDB(ctx context.Context, raw string) (affixdb.DB, error)
}

type ExtractedAffix struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
	IsGA  bool     `json:"isGA,omitempty"`
}

// DropExtraction is the structured record read off a screenshot.
type DropExtraction struct {
	ItemPower     int              `json:"item_power"`
	BaseAffixes   []ExtractedAffix `json:"base_affixes"`
	TemperAffixes []ExtractedAffix `json:"temper_affixes"`
	Aspect        ExtractedAffix   `json:"aspect"`
}

// Drop converts the extraction into scorer observations. Extra affixes beyond
// the item's slot count are dropped and missing temper slots are filled with
// empty ones, since an item always has MaxTemperSlots temper slots.
func (d DropExtraction) Drop() grading.Drop {
	out := grading.Drop{
		Base:      make([]grading.AffixObservation, 0, MaxBaseSlots),
		Temper:    make([]grading.AffixObservation, 0, MaxTemperSlots),
		ItemPower: d.ItemPower,
		Aspect:    grading.AspectObservation{Name: d.Aspect.Name, Value: d.Aspect.Value},
	}
	for i, a := range d.BaseAffixes {
		if i == MaxBaseSlots {
			break
		}
		out.Base = append(out.Base, grading.AffixObservation{Name: a.Name, IsGreaterAffix: a.IsGA, Value: a.Value})
	}
	for i, a := range d.TemperAffixes {
		if i == MaxTemperSlots {
			break
		}
		out.Temper = append(out.Temper, grading.AffixObservation{Name: a.Name, Value: a.Value})
	}
	for len(out.Temper) < MaxTemperSlots {
		out.Temper = append(out.Temper, grading.AffixObservation{})
	}
	return out
}
