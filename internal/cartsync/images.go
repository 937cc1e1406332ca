package cartsync

// Guest carts are persisted for weeks, so line items must never reference a
// third-party image host. Product names are rewritten to bundled assets
// before storage; unknown products get the placeholder.

const placeholderImage = "/assets/products/placeholder.png"

var localImages = map[string]string{
	"Potato":        "/assets/products/potato.png",
	"Onion":         "/assets/products/onion.png",
	"Tomato":        "/assets/products/tomato.png",
	"Milk":          "/assets/products/milk.png",
	"Bread":         "/assets/products/bread.png",
	"Eggs":          "/assets/products/eggs.png",
	"Basmati Rice":  "/assets/products/rice.png",
	"Wheat Flour":   "/assets/products/atta.png",
	"Banana":        "/assets/products/banana.png",
	"Apple":         "/assets/products/apple.png",
	"Paneer":        "/assets/products/paneer.png",
	"Butter":        "/assets/products/butter.png",
	"Curd":          "/assets/products/curd.png",
	"Green Chilli":  "/assets/products/chilli.png",
	"Coriander":     "/assets/products/coriander.png",
	"Sunflower Oil": "/assets/products/oil.png",
}

// ImagePathFor maps a product name to a bundled asset path.
func ImagePathFor(name string) string {
	if path, ok := localImages[name]; ok {
		return path
	}
	return placeholderImage
}
