package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		r, err := Parse("", "", "")
		require.NoError(t, err)
		assert.Equal(t, 0, r.Offset)
		assert.Equal(t, DefaultLimit, r.Limit)
		assert.Empty(t, r.Sort)
	})

	t.Run("sort keys", func(t *testing.T) {
		r, err := Parse("40", "10", "price,-bedrooms")
		require.NoError(t, err)
		assert.Equal(t, 40, r.Offset)
		assert.Equal(t, 10, r.Limit)
		assert.Equal(t, []Order{{Field: "price"}, {Field: "bedrooms", Desc: true}}, r.Sort)
	})

	t.Run("limit is clamped", func(t *testing.T) {
		r, err := Parse("", "5000", "")
		require.NoError(t, err)
		assert.Equal(t, MaxLimit, r.Limit)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := Parse("-1", "", "")
		assert.Error(t, err)
		_, err = Parse("", "abc", "")
		assert.Error(t, err)
		_, err = Parse("", "", "-")
		assert.Error(t, err)
	})
}

func TestRequest_Clause(t *testing.T) {
	allowed := map[string]string{"price": "price_per_night", "id": "id"}

	assert.Equal(t, "id ASC", Request{}.Clause(allowed, "id"))

	r := Request{Sort: []Order{{Field: "price", Desc: true}, {Field: "unknown"}}}
	assert.Equal(t, "price_per_night DESC, id ASC", r.Clause(allowed, "id"))

	r = Request{Sort: []Order{{Field: "id", Desc: true}}}
	assert.Equal(t, "id DESC", r.Clause(allowed, "id"))
}
