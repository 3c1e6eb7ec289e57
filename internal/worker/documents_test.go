package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocuments(t *testing.T) {
	docs := NewDocuments()
	docs.Open("file:///b.html", "html", 1, "b")
	docs.Open("file:///a.vue", "vue", 3, "a")

	models := docs.Models()
	require.Len(t, models, 2)
	assert.Equal(t, "file:///a.vue", models[0].URI())
	assert.Equal(t, "vue", docs.LanguageID("file:///a.vue"))

	assert.True(t, docs.Update("file:///a.vue", 4, "a2"))
	assert.False(t, docs.Update("file:///a.vue", 2, "stale"))
	assert.False(t, docs.Update("file:///missing", 1, "x"))

	m := docs.Models()[0]
	assert.Equal(t, int32(4), m.Version())
	assert.Equal(t, "a2", m.Value())

	// Snapshots do not change under later updates
	docs.Update("file:///a.vue", 5, "a3")
	assert.Equal(t, "a2", m.Value())

	docs.Close("file:///a.vue")
	models = docs.Models()
	require.Len(t, models, 1)
	assert.Equal(t, "file:///b.html", models[0].URI())
	assert.Equal(t, "", docs.LanguageID("file:///a.vue"))
}
