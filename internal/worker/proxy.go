package worker

import (
	"context"
	"fmt"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/yacobolo/twbridge/internal/languageservice"
)

type job func(w *Worker)

// Proxy runs a Worker on its own goroutine. Its methods are safe for
// concurrent use; calls are executed one at a time in arrival order.
//
// The ctx of a call only bounds how long the caller waits. A job the worker
// has accepted always runs to completion.
type Proxy struct {
	worker *Worker
	jobs   chan job
	quit   chan struct{}
	done   chan struct{}
	booted chan struct{}
	once   sync.Once

	bootErr error
}

// Start bootstraps a worker and serves it until ctx is done or Close is
// called.
func Start(ctx context.Context, mirror MirrorContext, opts Options) *Proxy {
	p := &Proxy{
		worker: New(mirror, opts),
		jobs:   make(chan job),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		booted: make(chan struct{}),
	}
	go p.run(ctx)
	return p
}

func (p *Proxy) run(ctx context.Context) {
	defer close(p.done)
	defer p.worker.Close()

	p.bootErr = p.worker.Bootstrap()
	if p.bootErr != nil {
		p.worker.logger.Error().Err(p.bootErr).Msg("bootstrap failed")
	}
	close(p.booted)

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.quit:
			return
		case j := <-p.jobs:
			j(p.worker)
		}
	}
}

// Close stops the worker and waits for the job in flight
func (p *Proxy) Close() {
	p.once.Do(func() { close(p.quit) })
	<-p.done
}

func call[T any](ctx context.Context, p *Proxy, fn func(w *Worker) (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	var zero T
	ch := make(chan result, 1)

	j := func(w *Worker) {
		defer func() {
			if r := recover(); r != nil {
				w.logger.Error().Interface("panic", r).Msg("worker job panicked")
				ch <- result{err: fmt.Errorf("worker: %v", r)}
			}
		}()
		v, err := fn(w)
		ch <- result{v: v, err: err}
	}

	if err := ctx.Err(); err != nil {
		return zero, err
	}
	select {
	case <-p.done:
		return zero, ErrWorkerClosed
	case <-p.quit:
		return zero, ErrWorkerClosed
	default:
	}

	select {
	case p.jobs <- j:
	case <-p.done:
		return zero, ErrWorkerClosed
	case <-p.quit:
		return zero, ErrWorkerClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// WaitReady blocks until the design system of the current stylesheet is
// derived.
func (p *Proxy) WaitReady(ctx context.Context) error {
	select {
	case <-p.booted:
	case <-p.done:
		return ErrWorkerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	if p.bootErr != nil {
		return p.bootErr
	}

	for {
		ok, pending, err := p.worker.state.readiness()
		switch {
		case ok:
			return nil
		case err != nil:
			return err
		}

		select {
		case <-pending:
		case <-p.done:
			return ErrWorkerClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// BuildCSS builds css for classes. files maps virtual paths to contents.
func (p *Proxy) BuildCSS(ctx context.Context, css string, files map[string]string, classes []string) (*BuildResult, error) {
	return call(ctx, p, func(w *Worker) (*BuildResult, error) {
		return w.BuildCSS(css, files, classes)
	})
}

// DoComplete returns completions at pos
func (p *Proxy) DoComplete(ctx context.Context, uri, languageID string, pos protocol.Position) (*protocol.CompletionList, error) {
	return call(ctx, p, func(w *Worker) (*protocol.CompletionList, error) {
		return w.DoComplete(uri, languageID, pos)
	})
}

// ResolveCompletionItem adds documentation to a completion item
func (p *Proxy) ResolveCompletionItem(ctx context.Context, item protocol.CompletionItem) (protocol.CompletionItem, error) {
	return call(ctx, p, func(w *Worker) (protocol.CompletionItem, error) {
		return w.ResolveCompletionItem(item)
	})
}

// DoHover returns hover content at pos
func (p *Proxy) DoHover(ctx context.Context, uri, languageID string, pos protocol.Position) (*protocol.Hover, error) {
	return call(ctx, p, func(w *Worker) (*protocol.Hover, error) {
		return w.DoHover(uri, languageID, pos)
	})
}

// DoValidate lints a document
func (p *Proxy) DoValidate(ctx context.Context, uri, languageID string) ([]protocol.Diagnostic, error) {
	return call(ctx, p, func(w *Worker) ([]protocol.Diagnostic, error) {
		return w.DoValidate(uri, languageID)
	})
}

// GetDocumentColors returns the colors of a document
func (p *Proxy) GetDocumentColors(ctx context.Context, uri, languageID string) ([]protocol.ColorInformation, error) {
	return call(ctx, p, func(w *Worker) ([]protocol.ColorInformation, error) {
		return w.GetDocumentColors(uri, languageID)
	})
}

// DoCodeActions returns quick fixes in rng
func (p *Proxy) DoCodeActions(ctx context.Context, uri, languageID string, rng protocol.Range, cc protocol.CodeActionContext) ([]protocol.CodeAction, error) {
	return call(ctx, p, func(w *Worker) ([]protocol.CodeAction, error) {
		return w.DoCodeActions(uri, languageID, rng, cc)
	})
}

// UpdateSettings replaces the editor settings
func (p *Proxy) UpdateSettings(ctx context.Context, settings languageservice.Settings, caps languageservice.Capabilities) error {
	_, err := call(ctx, p, func(w *Worker) (struct{}, error) {
		w.UpdateSettings(settings, caps)
		return struct{}{}, nil
	})
	return err
}

// Dependencies returns the virtual files the stylesheet imports
func (p *Proxy) Dependencies(ctx context.Context) ([]string, error) {
	return call(ctx, p, func(w *Worker) ([]string, error) {
		return w.Dependencies(), nil
	})
}
