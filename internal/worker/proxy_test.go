package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func startProxy(t *testing.T, docs *Documents) *Proxy {
	t.Helper()
	if docs == nil {
		docs = NewDocuments()
	}
	p := Start(context.Background(), docs, Options{Logger: zerolog.Nop()})
	t.Cleanup(p.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, p.WaitReady(ctx))
	return p
}

func TestProxyBuild(t *testing.T) {
	p := startProxy(t, nil)

	result, err := p.BuildCSS(context.Background(), DefaultStylesheet, nil, []string{"flex", "not-a-class"})
	require.NoError(t, err)
	assert.Equal(t, []string{"flex"}, classNames(result))
	assert.Equal(t, []string{"not-a-class"}, result.NotTailwindClasses)
}

func TestProxyConcurrentCalls(t *testing.T) {
	docs := NewDocuments()
	docs.Open("file:///a.html", "html", 1, `<p class="mt-2 mt-4">`)
	p := startProxy(t, docs)

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := p.BuildCSS(context.Background(), DefaultStylesheet, nil, []string{"flex"})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := p.DoValidate(context.Background(), "file:///a.html", "html")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestProxyClosed(t *testing.T) {
	p := Start(context.Background(), NewDocuments(), Options{Logger: zerolog.Nop()})
	p.Close()
	p.Close()

	_, err := p.BuildCSS(context.Background(), DefaultStylesheet, nil, nil)
	require.ErrorIs(t, err, ErrWorkerClosed)
	require.ErrorIs(t, p.WaitReady(context.Background()), ErrWorkerClosed)
}

func TestProxyStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Start(ctx, NewDocuments(), Options{Logger: zerolog.Nop()})
	cancel()
	<-p.done

	_, err := p.Dependencies(context.Background())
	require.ErrorIs(t, err, ErrWorkerClosed)
}

func TestProxyCallerContext(t *testing.T) {
	p := startProxy(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.DoHover(ctx, "file:///a.html", "html", protocol.Position{})
	require.ErrorIs(t, err, context.Canceled)

	// The worker is still serving
	deps, err := p.Dependencies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestProxyRecoversPanics(t *testing.T) {
	p := startProxy(t, nil)

	_, err := call(context.Background(), p, func(*Worker) (int, error) {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	_, err = p.BuildCSS(context.Background(), DefaultStylesheet, nil, []string{"flex"})
	require.NoError(t, err)
}

func TestProxySettings(t *testing.T) {
	docs := NewDocuments()
	docs.Open("file:///a.html", "html", 1, `<p class="bg-black">`)
	p := startProxy(t, docs)

	colors, err := p.GetDocumentColors(context.Background(), "file:///a.html", "html")
	require.NoError(t, err)
	assert.Len(t, colors, 1)

	settings := p.worker.settings
	settings.ColorDecorators = false
	require.NoError(t, p.UpdateSettings(context.Background(), settings, p.worker.capabilities))

	colors, err = p.GetDocumentColors(context.Background(), "file:///a.html", "html")
	require.NoError(t, err)
	assert.Empty(t, colors)
}
