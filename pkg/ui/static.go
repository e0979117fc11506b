package ui

import (
	"context"

	"github.com/vanderheijden86/slideview/pkg/imgpreview"
	"github.com/vanderheijden86/slideview/pkg/loader"
	"github.com/vanderheijden86/slideview/pkg/model"
	"github.com/vanderheijden86/slideview/pkg/viewer"
)

// Settle performs effects synchronously, feeding the results back into the
// controller until it asks for nothing more. It returns the decoded image
// of every slide that produced one. Used by print mode, which has no event
// loop.
func Settle(ctx context.Context, c *viewer.Controller, ld *loader.Loader, deck *model.Deck, effects []viewer.Effect) map[int]*imgpreview.Preview {
	images := make(map[int]*imgpreview.Preview)
	for len(effects) > 0 {
		var next []viewer.Effect
		for _, eff := range effects {
			switch e := eff.(type) {
			case viewer.FetchBody:
				text, err := ld.FetchBody(ctx, deck, e.Slide)
				next = append(next, c.Handle(viewer.BodyFetched{SlideID: e.SlideID, Seq: e.Seq, Text: text, Err: err})...)
			case viewer.LoadImage:
				msg := loadImage(ctx, ld, deck, e)
				if msg.Err != nil {
					next = append(next, c.Handle(viewer.ImageFailed{SlideID: e.SlideID, Ref: e.Ref, Err: msg.Err})...)
					continue
				}
				images[e.SlideID] = msg.Preview
				next = append(next, c.Handle(viewer.ImageLoaded{SlideID: e.SlideID})...)
			}
		}
		effects = next
	}
	return images
}
