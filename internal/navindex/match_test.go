package navindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	total   int
	updates []string
	done    bool
}

func (r *recordingReporter) Start(total int) { r.total = total }
func (r *recordingReporter) Update(_ int, message string) { r.updates = append(r.updates, message) }
func (r *recordingReporter) Finish() { r.done = true }

func TestWarm(t *testing.T) {
	s := newSiteStore(t)
	r := &recordingReporter{}

	require.NoError(t, s.Warm(context.Background(), r))
	assert.Equal(t, 2, r.total)
	assert.Equal(t, []string{"navtreeindex0", "navtreeindex1"}, r.updates)
	assert.True(t, r.done)
	assert.EqualValues(t, 2, s.Fetches())
}

func TestFind(t *testing.T) {
	s := newSiteStore(t)

	got, err := s.Find(context.Background(), []string{"*_8h.html"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "d8/df4/dinput_8h.html", got[0].Key)
	assert.Equal(t, []int{3, 0}, got[0].Path)

	got, err = s.Find(context.Background(), []string{"d8/**/*.html#a*"})
	require.NoError(t, err)
	keys := make([]string, len(got))
	for i, e := range got {
		keys[i] = e.Key
	}
	assert.Equal(t, []string{"d8/df4/dinput_8h.html#a1d0", "d8/df4/dinput_8h.html#a2e1"}, keys)
}

func TestMatchesAny(t *testing.T) {
	tests := []struct {
		key      string
		patterns []string
		want     bool
	}{
		{"index.html", nil, true},
		{"d9/d0a/classmars_1_1Robot.html", []string{"class*"}, true},
		{"d9/d0a/classmars_1_1Robot.html", []string{"d9/**"}, true},
		{"d9/d0a/classmars_1_1Robot.html", []string{"namespace*"}, false},
		{"d8/df4/dinput_8h.html#a1d0", []string{"*_8h.html"}, false},
		{"d8/df4/dinput_8h.html#a1d0", []string{"**/*#a1d0"}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchesAny(tt.key, tt.patterns), "%s %v", tt.key, tt.patterns)
	}
}
