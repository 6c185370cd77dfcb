package cart

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agribazaar/api/internal/catalog"
)

var (
	urea  = catalog.Product{Name: "Urea Fertilizer", Category: catalog.Fertilizers, Price: "₹500"}
	wheat = catalog.Product{Name: "Wheat Seeds", Category: catalog.CropSeeds, Price: "₹300"}
)

func mustAdd(t *testing.T, c Cart, p catalog.Product) Cart {
	t.Helper()
	next, _, err := Add(c, p)
	require.NoError(t, err)
	return next
}

func TestAdd_NewLine(t *testing.T) {
	c, added, err := Add(Cart{}, urea)
	require.NoError(t, err)

	assert.Equal(t, []Line{{ProductID: "Urea Fertilizer", Name: "Urea Fertilizer", UnitPrice: 500, Quantity: 1}}, c.Lines())
	assert.True(t, added.NewLine)
	assert.Equal(t, 1, added.Quantity)
	assert.Equal(t, "AgriBazaar says: ✅ Urea Fertilizer added to cart", added.Confirmation())
}

func TestAdd_SameProductTwiceMerges(t *testing.T) {
	c := mustAdd(t, mustAdd(t, Cart{}, urea), urea)

	require.Equal(t, 1, c.Len())
	l, ok := c.Line("Urea Fertilizer")
	require.True(t, ok)
	assert.Equal(t, 2, l.Quantity)
}

func TestAdd_OrderIsStable(t *testing.T) {
	c := mustAdd(t, Cart{}, urea)
	c = mustAdd(t, c, wheat)
	c, added, err := Add(c, urea)
	require.NoError(t, err)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "Urea Fertilizer", lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "Wheat Seeds", lines[1].ProductID)
	assert.Equal(t, 1, lines[1].Quantity)
	assert.False(t, added.NewLine)
	assert.Equal(t, 2, added.Quantity)
	assert.Equal(t, 1300, c.Total())
	assert.Equal(t, 3, c.Count())
}

func TestAdd_DoesNotMutateInput(t *testing.T) {
	before := mustAdd(t, Cart{}, urea)
	after := mustAdd(t, before, urea)

	l, _ := before.Line("Urea Fertilizer")
	assert.Equal(t, 1, l.Quantity)
	l, _ = after.Line("Urea Fertilizer")
	assert.Equal(t, 2, l.Quantity)

	_ = mustAdd(t, before, wheat)
	assert.Equal(t, 1, before.Len())
}

func TestAdd_UnitPriceFixedAtFirstInsert(t *testing.T) {
	c := mustAdd(t, Cart{}, urea)
	repriced := urea
	repriced.Price = "₹999"
	c = mustAdd(t, c, repriced)

	l, _ := c.Line(urea.Name)
	assert.Equal(t, 500, l.UnitPrice)
	assert.Equal(t, 2, l.Quantity)
}

func TestAdd_BadPriceLeavesCartUnchanged(t *testing.T) {
	c := mustAdd(t, Cart{}, urea)
	bad := catalog.Product{Name: "Mystery", Price: "free"}

	got, _, err := Add(c, bad)
	var pe *catalog.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, c.Lines(), got.Lines())
}

func TestAdd_SizeGrowsByAtMostOne(t *testing.T) {
	c := Cart{}
	for i, p := range catalog.Products() {
		next := mustAdd(t, c, p)
		assert.Equal(t, i+1, next.Len())
		again := mustAdd(t, next, p)
		assert.Equal(t, next.Len(), again.Len())
		c = again
	}
}

func TestFromLines(t *testing.T) {
	c := FromLines([]Line{
		{ProductID: "a", Name: "a", UnitPrice: 1, Quantity: 1},
		{ProductID: "b", Name: "b", UnitPrice: 2, Quantity: 0},
		{ProductID: "a", Name: "a", UnitPrice: 1, Quantity: 2},
		{ProductID: "", Quantity: 3},
	})
	require.Equal(t, 1, c.Len())
	l, _ := c.Line("a")
	assert.Equal(t, 3, l.Quantity)
}

func TestFromLines_Bounds(t *testing.T) {
	c := FromLines([]Line{
		{ProductID: "a", Name: "a", UnitPrice: 1, Quantity: int(^uint(0) >> 1)},
		{ProductID: "a", Name: "a", UnitPrice: 1, Quantity: 5},
		{ProductID: "neg", Name: "neg", UnitPrice: -10, Quantity: 1},
		{ProductID: "big", Name: "big", UnitPrice: MaxUnitPrice + 1, Quantity: 1},
	})
	require.Equal(t, 1, c.Len())
	l, _ := c.Line("a")
	assert.Equal(t, MaxQuantity, l.Quantity)
	assert.Equal(t, MaxQuantity, c.Total())
}

func TestAdd_QuantityLimit(t *testing.T) {
	c := FromLines([]Line{{ProductID: urea.Name, Name: urea.Name, UnitPrice: 500, Quantity: MaxQuantity}})

	next, _, err := Add(c, urea)
	require.ErrorIs(t, err, ErrQuantityLimit)
	l, _ := next.Line(urea.Name)
	assert.Equal(t, MaxQuantity, l.Quantity)
	assert.Positive(t, next.Total())
}

func TestSlots_ConcurrentAdds(t *testing.T) {
	var s Slots
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = s.Add(7, urea)
		}()
	}
	wg.Wait()

	c := s.Get(7)
	require.Equal(t, 1, c.Len())
	l, _ := c.Line(urea.Name)
	assert.Equal(t, 50, l.Quantity)

	s.Drop(7)
	assert.Equal(t, 0, s.Get(7).Len())
}

func TestSlots_ErrorKeepsSnapshot(t *testing.T) {
	var s Slots
	_, _, err := s.Add(1, urea)
	require.NoError(t, err)

	c, _, err := s.Add(1, catalog.Product{Name: "x", Price: "n/a"})
	require.Error(t, err)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, s.Get(1).Len())
}
