package news

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinAnalyst/internal/model"
)

type fakeSource struct {
	name      string
	headlines []model.Headline
	err       error
	calls     int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(_ context.Context, _ string, _ model.Window) ([]model.Headline, error) {
	f.calls++
	return f.headlines, f.err
}

func headlines(texts ...string) []model.Headline {
	out := make([]model.Headline, len(texts))
	for i, t := range texts {
		out[i] = model.Headline{Text: t}
	}
	return out
}

func TestChain_PrimarySucceeds(t *testing.T) {
	primary := &fakeSource{name: "primary", headlines: headlines("a b c")}
	secondary := &fakeSource{name: "secondary", headlines: headlines("x y z")}

	got, attempts := NewChain(5, primary, secondary).Fetch(context.Background(), "AAPL", model.Window{})
	assert.Equal(t, "a b c", got[0].Text)
	assert.Empty(t, attempts)
	assert.Equal(t, 0, secondary.calls)
}

func TestChain_FallsBackOnErrorAndEmpty(t *testing.T) {
	for name, primary := range map[string]*fakeSource{
		"error": {name: "primary", err: errors.New("status 503")},
		"empty": {name: "primary"},
	} {
		t.Run(name, func(t *testing.T) {
			secondary := &fakeSource{name: "secondary", headlines: headlines("x y z")}
			got, attempts := NewChain(5, primary, secondary).Fetch(context.Background(), "AAPL", model.Window{})
			require.Len(t, got, 1)
			assert.Equal(t, "x y z", got[0].Text)
			require.Len(t, attempts, 1)
			assert.Equal(t, "primary", attempts[0].Source)
		})
	}
	empty := &fakeSource{name: "primary"}
	_, attempts := NewChain(5, empty, &fakeSource{name: "s", headlines: headlines("q")}).Fetch(context.Background(), "AAPL", model.Window{})
	assert.ErrorIs(t, attempts[0].Err, ErrNoHeadlines)
}

func TestChain_AllFailYieldsEmpty(t *testing.T) {
	chain := NewChain(5,
		&fakeSource{name: "primary", err: errors.New("dial tcp: timeout")},
		&fakeSource{name: "secondary", err: errors.New("parse error")},
	)
	got, attempts := chain.Fetch(context.Background(), "AAPL", model.Window{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Len(t, attempts, 2)
	assert.Contains(t, attempts[1].String(), "secondary: parse error")
}

func TestChain_NoSources(t *testing.T) {
	got, attempts := NewChain(5).Fetch(context.Background(), "AAPL", model.Window{})
	assert.Empty(t, got)
	assert.Empty(t, attempts)
}

func TestChain_CapsArticles(t *testing.T) {
	src := &fakeSource{name: "primary", headlines: headlines("1", "2", "3", "4")}
	got, _ := NewChain(2, src).Fetch(context.Background(), "AAPL", model.Window{})
	assert.Len(t, got, 2)
}
