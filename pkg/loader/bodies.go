package loader

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/slideview/pkg/model"
)

// DefaultConcurrency bounds ResolveBodies when limit is not positive.
const DefaultConcurrency = 4

// BodyFetcher fetches a single slide body.
type BodyFetcher interface {
	FetchBody(ctx context.Context, deck *model.Deck, slide model.Slide) (string, error)
}

// ResolveBodies returns the raw body of every slide keyed by id, fetching
// lazy bodies concurrently. A failed fetch yields an empty body and a
// warning; only context cancellation aborts the whole call.
func ResolveBodies(ctx context.Context, deck *model.Deck, fetcher BodyFetcher, limit int, warn func(string)) (map[int]string, error) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	if warn == nil {
		warn = func(string) {}
	}

	slides := deck.Slides()
	bodies := make(map[int]string, len(slides))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, s := range slides {
		if !s.NeedsFetch() {
			mu.Lock()
			bodies[s.ID] = s.Text
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			body, err := fetcher.FetchBody(gctx, deck, s)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				body = ""
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warn(err.Error())
			}
			bodies[s.ID] = body
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolving slide bodies: %w", err)
	}
	return bodies, nil
}
