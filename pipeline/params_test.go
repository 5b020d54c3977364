package pipeline

import (
	"io"
	"strings"
	"testing"

	"github.com/mengelbart/pipemod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrim(t *testing.T) {
	first, last, err := ParseTrim("1000,0")
	require.NoError(t, err)
	assert.Equal(t, 1000, first)
	assert.Equal(t, 0, last)

	first, last, err = ParseTrim("5, -20")
	require.NoError(t, err)
	assert.Equal(t, 5, first)
	assert.Equal(t, -20, last)

	for _, s := range []string{"", "10", "a,1", "1,b", "-1,5"} {
		_, _, err := ParseTrim(s)
		var ce *ConfigError
		assert.ErrorAs(t, err, &ce, s)
	}
}

func TestParseSAR(t *testing.T) {
	num, den, err := ParseSAR("10:11")
	require.NoError(t, err)
	assert.Equal(t, []int{10, 11}, []int{num, den})

	num, den, err = ParseSAR("")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, []int{num, den})

	for _, s := range []string{"10", "-1:1", "a:b", "4/3"} {
		_, _, err := ParseSAR(s)
		assert.Error(t, err, s)
	}
}

func TestParseInterlace(t *testing.T) {
	for _, s := range []string{"p", "t", "b"} {
		c, err := ParseInterlace(s)
		require.NoError(t, err)
		assert.Equal(t, s[0], c)
	}
	_, err := ParseInterlace("m")
	assert.Error(t, err)
}

func TestParseAudioBits(t *testing.T) {
	for s, want := range map[string]pipemod.SampleType{
		"":      pipemod.SampleTypeNone,
		"8bit":  pipemod.SampleTypeU8,
		"16bit": pipemod.SampleTypeS16,
		"24bit": pipemod.SampleTypeS24,
		"32bit": pipemod.SampleTypeS32,
		"float": pipemod.SampleTypeFloat,
		"FLOAT": pipemod.SampleTypeFloat,
	} {
		got, err := ParseAudioBits(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
	_, err := ParseAudioBits("64bit")
	assert.ErrorContains(t, err, `invalid argument "64bit" for bits`)
}

func TestParseY4MBits(t *testing.T) {
	n, err := ParseY4MBits("10")
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	for _, s := range []string{"8", "11", "x", "17"} {
		_, err := ParseY4MBits(s)
		assert.Error(t, err, s)
	}
}

func TestParseFieldPolicy(t *testing.T) {
	for s, want := range map[string]FieldDecision{
		"assume": FieldAssumeFrameBased,
		"weave":  FieldWeave,
		"fail":   FieldAbort,
	} {
		policy, err := ParseFieldPolicy(s, nil, nil)
		require.NoError(t, err)
		got, err := policy()
		require.NoError(t, err)
		assert.Equal(t, want, got, s)
	}

	policy, err := ParseFieldPolicy("prompt", strings.NewReader("2\n"), io.Discard)
	require.NoError(t, err)
	got, err := policy()
	require.NoError(t, err)
	assert.Equal(t, FieldWeave, got)

	got, err = PromptFieldPolicy(strings.NewReader("q\n"), io.Discard)()
	require.NoError(t, err)
	assert.Equal(t, FieldAbort, got)

	_, err = PromptFieldPolicy(strings.NewReader(""), io.Discard)()
	assert.ErrorIs(t, err, io.EOF)

	_, err = ParseFieldPolicy("guess", nil, nil)
	assert.Error(t, err)
}
