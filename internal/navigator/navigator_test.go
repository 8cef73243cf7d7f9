package navigator

import (
	"math/rand/v2"
	"sort"
	"testing"

	"hdxtunes/internal/tracks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tr(name string) tracks.Track {
	return tracks.Track{Path: "/m/" + name + ".mp3", Name: name}
}

// abc puts A on top of the queue.
func abc() *Navigator {
	return New([]tracks.Track{tr("C"), tr("B"), tr("A")})
}

func names(list []tracks.Track) []string {
	return tracks.Names(list, false, 0)
}

func all(n *Navigator) []string {
	var out []string
	out = append(out, names(n.Remaining())...)
	out = append(out, names(n.History())...)
	sort.Strings(out)
	return out
}

func TestNavigationScenario(t *testing.T) {
	n := abc()

	got, err := n.PopNext()
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)

	require.NoError(t, n.Advance())
	got, err = n.PopNext()
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)

	require.NoError(t, n.Rewind())
	assert.Equal(t, []string{"A", "B", "C"}, names(n.UpNext()))
	assert.Empty(t, n.History())

	got, err = n.PopNext()
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
}

func TestPopNextErrors(t *testing.T) {
	n := New(nil)
	_, err := n.PopNext()
	assert.ErrorIs(t, err, ErrQueueEmpty)

	n = abc()
	_, err = n.PopNext()
	require.NoError(t, err)
	_, err = n.PopNext()
	assert.ErrorIs(t, err, ErrTrackLoaded)
}

func TestNothingPlaying(t *testing.T) {
	n := abc()
	assert.ErrorIs(t, n.Advance(), ErrNothingPlaying)
	assert.ErrorIs(t, n.Rewind(), ErrNothingPlaying)
	assert.ErrorIs(t, n.Shuffle(nil), ErrNothingPlaying)
	assert.ErrorIs(t, n.InsertAndContinue(nil), ErrNothingPlaying)
	_, err := n.Restart()
	assert.ErrorIs(t, err, ErrNothingPlaying)
	assert.Equal(t, 3, n.Len())
}

func TestRewindWithoutHistory(t *testing.T) {
	n := abc()
	_, _ = n.PopNext()
	require.NoError(t, n.Rewind())
	assert.Equal(t, []string{"A", "B", "C"}, names(n.UpNext()))
}

func TestRewindAfterAdvanceRoundTrip(t *testing.T) {
	n := abc()
	_, _ = n.PopNext()
	wantNow, _ := n.NowPlaying()
	wantUp, wantHist := n.UpNext(), n.History()

	require.NoError(t, n.Advance())
	_, err := n.PopNext()
	require.NoError(t, err)
	require.NoError(t, n.Rewind())
	_, err = n.PopNext()
	require.NoError(t, err)

	now, _ := n.NowPlaying()
	assert.Equal(t, wantNow, now)
	assert.Equal(t, wantUp, n.UpNext())
	assert.Equal(t, wantHist, n.History())
}

func TestRestartKeepsState(t *testing.T) {
	n := abc()
	_, _ = n.PopNext()
	got, err := n.Restart()
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)

	now, ok := n.NowPlaying()
	assert.True(t, ok)
	assert.Equal(t, got, now)
	assert.Equal(t, []string{"B", "C"}, names(n.UpNext()))
}

func TestInsertAndContinue(t *testing.T) {
	n := abc()
	_, _ = n.PopNext()
	require.NoError(t, n.InsertAndContinue([]tracks.Track{tr("Y"), tr("X")}))

	_, ok := n.NowPlaying()
	assert.False(t, ok)
	assert.Equal(t, []string{"A", "B", "C", "X", "Y"}, names(n.UpNext()))
}

func TestShuffleKeepsMultiset(t *testing.T) {
	list := make([]tracks.Track, 0, 20)
	for _, s := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		list = append(list, tr(s))
	}
	n := New(list)
	_, _ = n.PopNext()
	require.NoError(t, n.Advance())
	_, _ = n.PopNext()

	before := all(n)
	require.NoError(t, n.Shuffle(rand.New(rand.NewPCG(1, 2))))
	_, ok := n.NowPlaying()
	assert.False(t, ok)
	assert.Equal(t, before, all(n))
	assert.Len(t, n.UpNext(), 7)
	assert.Len(t, n.History(), 1)
}

func TestMultisetInvariance(t *testing.T) {
	n := abc()
	want := all(n)
	rng := rand.New(rand.NewPCG(7, 9))

	for i := 0; i < 200; i++ {
		if _, ok := n.NowPlaying(); !ok {
			if _, err := n.PopNext(); err != nil {
				require.ErrorIs(t, err, ErrQueueEmpty)
				break
			}
		}
		switch rng.IntN(3) {
		case 0:
			require.NoError(t, n.Advance())
		case 1:
			require.NoError(t, n.Rewind())
		case 2:
			require.NoError(t, n.Shuffle(rng))
		}
		assert.Equal(t, want, all(n), "step %d", i)
		assert.Equal(t, 3, n.Len())
	}
}

func TestSkipDropsTrack(t *testing.T) {
	n := abc()
	_, _ = n.PopNext()
	n.Skip()
	assert.Equal(t, 2, n.Len())
	got, err := n.PopNext()
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)
}

func TestAppendAndRemaining(t *testing.T) {
	n := New(nil)
	n.Append([]tracks.Track{tr("Z"), tr("Y")})
	assert.Equal(t, []string{"Y", "Z"}, names(n.UpNext()))

	_, _ = n.PopNext()
	assert.Equal(t, []string{"Z", "Y"}, names(n.Remaining()))
}
