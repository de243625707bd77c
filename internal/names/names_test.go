package names_test

import (
	"testing"

	"github.com/halisahaclub/halisaha/internal/names"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "can deveci", names.Normalize("  Can   Deveci "))
	assert.Equal(t, "can deveci", names.Normalize("CAN DEVECI"))
	assert.Equal(t, "", names.Normalize("   "))
}

func TestNormalizeTurkishCasing(t *testing.T) {
	// Dotted capital İ lower-cases to a plain i, no combining dot.
	assert.Equal(t, "ibrahim", names.Normalize("İbrahim"))
	assert.Equal(t, names.Normalize("İLKER"), names.Normalize("ilker"))
	// ASCII-typed caps match the properly cased Turkish form.
	assert.Equal(t, names.Normalize("IŞIK"), names.Normalize("Işık"))
	assert.Equal(t, names.Normalize("CAN DEVECI"), names.Normalize("Can Deveci"))
}

func TestToDisplayForm(t *testing.T) {
	assert.Equal(t, "Can Deveci", names.ToDisplayForm("  can   DEVECI "))
	assert.Equal(t, "İbrahim Işık", names.ToDisplayForm("İBRAHİM IŞIK"))
	assert.Equal(t, "", names.ToDisplayForm(""))
}

func TestDisplayNormalizeRoundTrip(t *testing.T) {
	inputs := []string{
		"can deveci",
		"CAN  DEVECI",
		"  İbrahim ışık ",
		"mehmet ali ağca",
		"x",
		"çağrı",
	}
	for _, in := range inputs {
		assert.Equal(t, names.Normalize(in), names.Normalize(names.ToDisplayForm(in)), "input %q", in)
	}
}
