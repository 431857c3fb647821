package replycache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinemde/aiface/unifiedllm"
)

type countingAdapter struct {
	calls int
	text  string
	err   error
}

func (a *countingAdapter) Name() string                        { return "counting" }
func (a *countingAdapter) FailureMode() unifiedllm.FailureMode { return unifiedllm.Propagate }
func (a *countingAdapter) Call(context.Context, *unifiedllm.EffectiveConfig, string) (string, error) {
	a.calls++
	return a.text, a.err
}

func newFacade(t *testing.T, adapter unifiedllm.Adapter, c *Cache) *unifiedllm.Facade {
	t.Helper()
	logger, _ := test.NewNullLogger()
	f, err := unifiedllm.New(unifiedllm.RootConfig{Provider: "deepseek"},
		unifiedllm.WithAdapter(unifiedllm.KindDeepSeek, adapter),
		unifiedllm.WithMiddleware(c.Middleware()),
		unifiedllm.WithLogger(logger),
	)
	require.NoError(t, err)
	return f
}

func TestCacheServesRepeatedPrompts(t *testing.T) {
	adapter := &countingAdapter{text: "\nfirst\nline"}
	c := New(time.Minute, time.Minute)
	f := newFacade(t, adapter, c)

	for i := 0; i < 3; i++ {
		got, err := f.CallAIInterface(context.Background(), "same prompt")
		require.NoError(t, err)
		assert.Equal(t, "first\nline", got)
	}
	assert.Equal(t, 1, adapter.calls)
	assert.Equal(t, 1, c.Len())

	_, err := f.CallAIInterface(context.Background(), "other prompt")
	require.NoError(t, err)
	assert.Equal(t, 2, adapter.calls)

	c.Flush()
	_, err = f.CallAIInterface(context.Background(), "same prompt")
	require.NoError(t, err)
	assert.Equal(t, 3, adapter.calls)
}

func TestCacheSkipsErrorsAndEmptyReplies(t *testing.T) {
	adapter := &countingAdapter{err: errors.New("boom")}
	c := New(time.Minute, time.Minute)
	f := newFacade(t, adapter, c)

	_, err := f.CallAIInterface(context.Background(), "p")
	require.Error(t, err)
	_, err = f.CallAIInterface(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, 2, adapter.calls)

	adapter.err = nil
	_, err = f.CallAIInterface(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestCacheExpires(t *testing.T) {
	adapter := &countingAdapter{text: "ok"}
	c := New(10*time.Millisecond, time.Minute)
	f := newFacade(t, adapter, c)

	_, err := f.CallAIInterface(context.Background(), "p")
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, err = f.CallAIInterface(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, 2, adapter.calls)
}

func TestCacheSeparatesModelsAndEndpoints(t *testing.T) {
	c := New(time.Minute, time.Minute)
	logger, _ := test.NewNullLogger()

	build := func(cfg *unifiedllm.ProviderConfig, adapter unifiedllm.Adapter) *unifiedllm.Facade {
		f, err := unifiedllm.New(unifiedllm.RootConfig{Provider: "deepseek", DeepSeek: cfg},
			unifiedllm.WithAdapter(unifiedllm.KindDeepSeek, adapter),
			unifiedllm.WithMiddleware(c.Middleware()),
			unifiedllm.WithLogger(logger),
		)
		require.NoError(t, err)
		return f
	}

	chat := &countingAdapter{text: "chat reply"}
	coder := &countingAdapter{text: "coder reply"}
	mirror := &countingAdapter{text: "mirror reply"}
	fChat := build(&unifiedllm.ProviderConfig{ModelName: "deepseek-chat"}, chat)
	fCoder := build(&unifiedllm.ProviderConfig{ModelName: "deepseek-coder"}, coder)
	fMirror := build(&unifiedllm.ProviderConfig{ModelName: "deepseek-chat", BaseURL: "https://mirror.example.com/v1"}, mirror)

	for _, tc := range []struct {
		f    *unifiedllm.Facade
		want string
	}{
		{fChat, "chat reply"},
		{fCoder, "coder reply"},
		{fMirror, "mirror reply"},
		{fChat, "chat reply"},
	} {
		got, err := tc.f.CallAIInterface(context.Background(), "same prompt")
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	assert.Equal(t, 1, chat.calls)
	assert.Equal(t, 1, coder.calls)
	assert.Equal(t, 1, mirror.calls)
	assert.Equal(t, 3, c.Len())
}
