package palette

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexColor = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func TestEveryFlavorHasTheSameColours(t *testing.T) {
	all := All()
	require.Len(t, all, 4)

	mocha := all["mocha"]
	require.Len(t, mocha, 26)

	for _, name := range Flavors() {
		flavor, ok := all[name]
		require.True(t, ok, "missing flavour %s", name)
		assert.Len(t, flavor, len(mocha))
		for colour, value := range flavor {
			_, shared := mocha[colour]
			assert.True(t, shared, "%s has unexpected colour %s", name, colour)
			assert.Regexp(t, hexColor, value)
		}
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	latte, ok := Lookup(" Latte ")
	require.True(t, ok)
	assert.Equal(t, "#eff1f5", latte["base"])

	latte["base"] = "#000000"
	again, _ := Lookup("latte")
	assert.Equal(t, "#eff1f5", again["base"])

	_, ok = Lookup("espresso")
	assert.False(t, ok)
}

func TestFlavorsOrder(t *testing.T) {
	assert.Equal(t, []string{"latte", "frappe", "macchiato", "mocha"}, Flavors())
}
