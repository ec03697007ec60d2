package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		start    *float64
		end      *float64
		expected Category
	}{
		{"infants", f(0), f(4), Minor},
		{"minor upper boundary", f(15), f(17), Minor},
		{"minor with missing start", nil, f(17), Minor},
		{"young adult lower boundary", f(18), f(24), YoungAdult},
		{"young adult upper boundary", f(40), f(44), YoungAdult},
		{"middle adult lower boundary", f(45), f(49), MiddleAdult},
		{"middle adult upper boundary", f(55), f(59), MiddleAdult},
		{"older adult lower boundary", f(60), f(64), OlderAdult},
		{"older adult upper boundary", f(70), f(74), OlderAdult},
		{"elderly lower boundary", f(75), f(79), Elderly},
		{"elderly upper boundary", f(85), f(89), Elderly},
		{"longevous open ended", f(90), nil, LongevousElderly},
		{"longevous closed", f(95), f(99), LongevousElderly},
		{"centenarians", f(100), nil, LongevousElderly},
		{"straddles 17/18", f(15), f(19), Unclassified},
		{"straddles 44/45", f(40), f(49), Unclassified},
		{"straddles 59/60", f(55), f(64), Unclassified},
		{"straddles 74/75", f(70), f(79), Unclassified},
		{"straddles 89/90", f(85), f(94), Unclassified},
		{"total row", f(0), nil, Unclassified},
		{"both missing", nil, nil, Unclassified},
		{"start only below 90", f(80), nil, Unclassified},
		{"NaN bounds", f(math.NaN()), f(math.NaN()), Unclassified},
		{"negative end", f(-5), f(-1), Minor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.start, tt.end))
		})
	}
}

func TestClassify_Total(t *testing.T) {
	// Every combination from {nil, negative, 0..120, >120} yields a valid category.
	bounds := []*float64{nil, f(-10), f(-1)}
	for v := 0.0; v <= 120; v++ {
		bounds = append(bounds, f(v))
	}
	bounds = append(bounds, f(121), f(150), f(math.Inf(1)))

	for _, s := range bounds {
		for _, e := range bounds {
			c := Classify(s, e)
			assert.True(t, c >= Minor && c <= Unclassified, "start=%v end=%v gave %d", s, e, c)
		}
	}
}

func TestCategory_Text(t *testing.T) {
	t.Run("round trips through JSON", func(t *testing.T) {
		for _, c := range append(Categories(), Unclassified) {
			data, err := json.Marshal(c)
			require.NoError(t, err)

			var got Category
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, c, got)
		}
	})

	t.Run("unknown label is unclassified", func(t *testing.T) {
		var got Category
		require.NoError(t, json.Unmarshal([]byte(`"Otros"`), &got))
		assert.Equal(t, Unclassified, got)
	})

	t.Run("labels", func(t *testing.T) {
		assert.Equal(t, "Minor (0-17)", Minor.String())
		assert.Equal(t, "Longevous elderly (90+)", LongevousElderly.String())
		assert.Equal(t, "Unclassified", Category(42).String())
	})
}

func TestCategories(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 6)
	for i, c := range cats {
		assert.Equal(t, Category(i), c)
		assert.True(t, c.Classified())
	}
	assert.False(t, Unclassified.Classified())
}
