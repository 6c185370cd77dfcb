package cart

import (
	"errors"
	"fmt"

	"agribazaar/api/internal/catalog"
)

// Границы строки; с ними Total не переполняет int.
const (
	MaxQuantity  = 9999
	MaxUnitPrice = 10_000_000
)

// ErrQuantityLimit — в строке уже MaxQuantity единиц.
var ErrQuantityLimit = errors.New("cart: quantity limit reached")

// Line — одна агрегированная строка корзины.
type Line struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int    `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Cart is an immutable, insertion-ordered list of lines with at most one
// line per ProductID. The zero value is an empty cart.
type Cart struct {
	lines []Line
}

// FromLines восстанавливает корзину, присланную клиентом. Дубликаты
// productId склеиваются, строки с quantity < 1 или ценой вне
// [0, MaxUnitPrice] отбрасываются, количество обрезается до MaxQuantity.
func FromLines(lines []Line) Cart {
	var out []Line
	idx := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity < 1 || l.UnitPrice < 0 || l.UnitPrice > MaxUnitPrice {
			continue
		}
		l.Quantity = min(l.Quantity, MaxQuantity)
		if i, ok := idx[l.ProductID]; ok {
			out[i].Quantity = min(out[i].Quantity+l.Quantity, MaxQuantity)
			continue
		}
		idx[l.ProductID] = len(out)
		out = append(out, l)
	}
	return Cart{lines: out}
}

// Lines returns a copy; mutating it does not affect the cart.
func (c Cart) Lines() []Line {
	return append([]Line{}, c.lines...)
}

func (c Cart) Len() int { return len(c.lines) }

// Count — общее количество единиц товара.
func (c Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) Total() int {
	sum := 0
	for _, l := range c.lines {
		sum += l.UnitPrice * l.Quantity
	}
	return sum
}

// Line ищет строку по productId.
func (c Cart) Line(productID string) (Line, bool) {
	for _, l := range c.lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return Line{}, false
}

// Added describes what Add did; the view builds its notice from it.
type Added struct {
	ProductName string
	Quantity    int  // количество после добавления
	NewLine     bool // true, если строка появилась впервые
}

func (a Added) Confirmation() string {
	return fmt.Sprintf("AgriBazaar says: ✅ %s added to cart", a.ProductName)
}

// Add merges one unit of p into c and returns a new cart. An existing line
// keeps its position and unit price; otherwise a line with quantity 1 is
// appended. On a price parse error or at MaxQuantity c is returned
// unchanged.
func Add(c Cart, p catalog.Product) (Cart, Added, error) {
	for i, l := range c.lines {
		if l.ProductID != p.Name {
			continue
		}
		if l.Quantity >= MaxQuantity {
			return c, Added{}, fmt.Errorf("add %q: %w", p.Name, ErrQuantityLimit)
		}
		next := make([]Line, len(c.lines))
		copy(next, c.lines)
		next[i].Quantity++
		return Cart{lines: next}, Added{ProductName: p.Name, Quantity: next[i].Quantity}, nil
	}

	price, err := catalog.ParsePrice(p.Price)
	if err != nil {
		return c, Added{}, fmt.Errorf("add %q: %w", p.Name, err)
	}
	next := make([]Line, len(c.lines), len(c.lines)+1)
	copy(next, c.lines)
	next = append(next, Line{
		ProductID: p.Name,
		Name:      p.Name,
		UnitPrice: price,
		Quantity:  1,
	})
	return Cart{lines: next}, Added{ProductName: p.Name, Quantity: 1, NewLine: true}, nil
}
