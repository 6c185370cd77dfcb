package catalog

import (
	"strings"
)

type Category string

const (
	All         Category = "All"
	Fertilizers Category = "Fertilizers"
	CropSeeds   Category = "Crop Seeds"
	Pesticides  Category = "Pesticides"
	Crops       Category = "Crops"
)

// Categories перечисляет категории в порядке показа (без All).
var Categories = []Category{Fertilizers, CropSeeds, Pesticides, Crops}

// ParseCategory принимает имя категории без учёта регистра. Пустая строка означает All.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(All)) {
		return All, true
	}
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Title — заголовок списка товаров.
func (c Category) Title() string {
	if c == All || c == "" {
		return "All Products"
	}
	return string(c)
}

// Product is immutable; Name doubles as the product id.
type Product struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Price    string   `json:"price"` // отображаемая цена, например "₹500"
	ImageURL string   `json:"image"`
}

var products = []Product{
	{
		Name:     "Urea Fertilizer",
		Category: Fertilizers,
		Price:    "₹500",
		ImageURL: "https://iffco-public-assets.s3.ap-south-1.amazonaws.com/s3fs-public/2020-04/UREA_0.png",
	},
	{
		Name:     "Wheat Seeds",
		Category: CropSeeds,
		Price:    "₹300",
		ImageURL: "https://img500.exportersindia.com/product_images/bc-500/2022/2/9445504/wheat-seeds-1644211661-6170968.jpeg",
	},
	{
		Name:     "Organic Neem Pesticide",
		Category: Pesticides,
		Price:    "₹450",
		ImageURL: "https://5.imimg.com/data5/SELLER/Default/2022/9/EH/MY/KB/39513558/neem-oil-agricultural-pesticide.jpg",
	},
	{
		Name:     "Fresh Tomatoes",
		Category: Crops,
		Price:    "₹250",
		ImageURL: "https://media.istockphoto.com/id/847335116/photo/tomatoes-on-the-vine.jpg?s=612x612&w=0&k=20&c=XspM2ySvUfqjnt7HL5qKyn0tyRb5qLsf1GAP6-3xQsw=",
	},
	{
		Name:     "DAP Fertilizer",
		Category: Fertilizers,
		Price:    "₹600",
		ImageURL: "https://sasyamruth.com/wp-content/uploads/2024/03/DAP-chemical-fertilizer.jpg",
	},
	{
		Name:     "Rice Paddy Seeds",
		Category: CropSeeds,
		Price:    "₹350",
		ImageURL: "https://images.meesho.com/images/products/469769773/j3yz6_512.jpg",
	},
}

// Products возвращает копию каталога.
func Products() []Product {
	return append([]Product(nil), products...)
}

// Lookup ищет товар по точному имени.
func Lookup(name string) (Product, bool) {
	for _, p := range products {
		if p.Name == name {
			return p, true
		}
	}
	return Product{}, false
}

// Filter keeps products of the given category (All matches every category)
// whose name contains term case-insensitively. Source order is preserved.
// The result is never nil: an empty slice means "searched, nothing found".
func Filter(src []Product, category Category, term string) []Product {
	needle := strings.ToLower(term)
	out := make([]Product, 0, len(src))
	for _, p := range src {
		if category != All && category != "" && p.Category != category {
			continue
		}
		if !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}
