package roster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsSummer(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		want := m >= time.April && m <= time.October
		assert.Equal(t, want, IsSummer(m), m.String())
	}
}

func TestTimes_SummerSensitiveShift(t *testing.T) {
	cat := DefaultCatalog()

	for _, token := range []string{"D4", "d4t"} {
		code := cat.Classify(token)

		winter, ok := cat.Times(code, false)
		assert.True(t, ok)
		assert.Equal(t, Span{Start: hm(15, 0), End: hm(22, 30)}, winter)

		summer, ok := cat.Times(code, true)
		assert.True(t, ok)
		assert.Equal(t, Span{Start: hm(15, 30), End: hm(23, 0)}, summer)
	}
}

func TestTimes_FixedShiftIgnoresSummer(t *testing.T) {
	cat := DefaultCatalog()
	code := cat.Classify("M")

	a, _ := cat.Times(code, false)
	b, _ := cat.Times(code, true)
	assert.Equal(t, a, b)
	assert.Equal(t, Span{Start: hm(6, 30), End: hm(13, 30)}, a)
}

func TestTimes_AbsencesHaveNoTime(t *testing.T) {
	cat := DefaultCatalog()
	for _, token := range []string{"AL", "SC", "SSC", "DIL", "//", "S", ""} {
		_, ok := cat.Times(cat.Classify(token), true)
		assert.False(t, ok, "token %q", token)
	}
}

func TestTimes_FreeTextReturnsOwnSpan(t *testing.T) {
	cat := DefaultCatalog()
	span := Span{Start: hm(9, 15), End: hm(12, 45)}
	code := cat.Classify("Course").WithSpan("Course", span)

	got, ok := cat.Times(code, true)
	assert.True(t, ok)
	assert.Equal(t, span, got)

	got, ok = cat.Times(code, false)
	assert.True(t, ok)
	assert.Equal(t, span, got)
}

func TestTimes_UnfilledFreeTextHasNoTime(t *testing.T) {
	cat := DefaultCatalog()
	code := cat.Classify("Course")
	assert.False(t, code.Filled())

	_, ok := cat.Times(code, false)
	assert.False(t, ok)

	code.Overnight = true
	span, ok := cat.Times(code, false)
	assert.True(t, ok)
	assert.Equal(t, Span{}, span)
}

func TestTimes_UnknownShiftToken(t *testing.T) {
	_, ok := DefaultCatalog().Times(ShiftCode{Token: "ZZ", Name: "ZZ", Kind: KindShift}, false)
	assert.False(t, ok)
}
