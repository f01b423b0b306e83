package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Run("valid config normalizes keywords", func(t *testing.T) {
		cfg := Config{UserID: "u1", Keywords: []string{" hotel ", "", "resort"}}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, []string{"hotel", "resort"}, cfg.Keywords)
		assert.Equal(t, 50, cfg.MaxResults)
	})

	t.Run("no keywords rejected", func(t *testing.T) {
		cfg := Config{UserID: "u1", Keywords: []string{"  ", ""}}
		err := cfg.Validate()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "keywords", verr.Field)
	})

	t.Run("too many keywords rejected", func(t *testing.T) {
		cfg := Config{UserID: "u1", Keywords: make([]string, 21)}
		for i := range cfg.Keywords {
			cfg.Keywords[i] = "kw"
		}
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing user rejected", func(t *testing.T) {
		cfg := Config{Keywords: []string{"hotel"}}
		assert.Error(t, cfg.Validate())
	})

	t.Run("max results clamped", func(t *testing.T) {
		cfg := Config{UserID: "u1", Keywords: []string{"hotel"}, MaxResults: 5000}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, 1000, cfg.MaxResults)
	})
}

func TestLeadValidate(t *testing.T) {
	valid := func() *Lead {
		return &Lead{
			UserID: "u1",
			URL:    "https://example.com/a",
		}
	}

	t.Run("defaults applied", func(t *testing.T) {
		lead := valid()
		require.NoError(t, lead.Validate())
		assert.Equal(t, StatusNew, lead.Status)
		assert.Equal(t, PriorityMedium, lead.Priority)
		assert.Equal(t, QualificationUnqualified, lead.Qualification)
	})

	t.Run("missing user rejected", func(t *testing.T) {
		lead := valid()
		lead.UserID = ""
		assert.Error(t, lead.Validate())
	})

	t.Run("missing url rejected", func(t *testing.T) {
		lead := valid()
		lead.URL = ""
		assert.Error(t, lead.Validate())
	})

	t.Run("score bounds enforced", func(t *testing.T) {
		lead := valid()
		lead.Score = 101
		assert.Error(t, lead.Validate())

		lead = valid()
		lead.Confidence = -1
		assert.Error(t, lead.Validate())
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		lead := valid()
		lead.Status = "mystery"
		err := lead.Validate()
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "status"))
	})
}

func TestQualificationFor(t *testing.T) {
	assert.Equal(t, QualificationHighlyQualified, QualificationFor(80))
	assert.Equal(t, QualificationQualified, QualificationFor(50))
	assert.Equal(t, QualificationUnqualified, QualificationFor(10))
}

func TestValueNative(t *testing.T) {
	assert.Equal(t, "x", StringValue("x").Native())
	assert.Equal(t, 12.0, NumberValue(12).Native())
	assert.Equal(t, true, BoolValue(true).Native())
	assert.Equal(t, []string{"a"}, StringListValue([]string{"a"}).Native())
}
