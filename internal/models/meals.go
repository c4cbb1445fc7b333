package models

// MealItem is a single consumed-product record within a date range.
type MealItem struct {
	Time         string  `json:"time"`
	Name         string  `json:"name"`
	Calories     int     `json:"calories"`
	Proteins     float64 `json:"B"`
	Fats         float64 `json:"Z"`
	Carbs        float64 `json:"U"`
	MassConsumed int     `json:"massConsumed"`
}

type MealStats struct {
	Stats []MealItem `json:"stats"`
}

// GroupedMeals buckets a day's meal items by time of day.
type GroupedMeals struct {
	Breakfast []MealItem
	Lunch     []MealItem
	Snacks    []MealItem
	Dinner    []MealItem
}

// Product is the domain shape handed to callers, independent of the
// lookup envelope it arrived in.
type Product struct {
	ID       int
	Name     string
	Barcode  int64
	Calories int
	Proteins float64
	Fats     float64
	Carbs    float64
	Mass     int
}

// ProductDetails is the wire shape of a barcode lookup hit.
type ProductDetails struct {
	RequestID string  `json:"requestId"`
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Calories  float64 `json:"calories"`
	Proteins  float64 `json:"B"`
	Fats      float64 `json:"Z"`
	Carbs     float64 `json:"U"`
	Mass      float64 `json:"mass"`
}

// BarcodeLookup is the heavy-response envelope for a barcode lookup.
type BarcodeLookup struct {
	Status       LookupStatus    `json:"status"`
	Data         *ProductDetails `json:"data,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
}

// SearchedProduct is a single name-search hit.
type SearchedProduct struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Calories  float64 `json:"calories"`
	Proteins  float64 `json:"B"`
	Fats      float64 `json:"Z"`
	Carbs     float64 `json:"U"`
	Mass      float64 `json:"mass"`
}

type NameSearchData struct {
	RequestID string            `json:"requestId"`
	Products  []SearchedProduct `json:"products"`
}

// NameSearch is the heavy-response envelope for a name search.
type NameSearch struct {
	Status       LookupStatus    `json:"status,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	Data         *NameSearchData `json:"data,omitempty"`
}

// AddProductRequest registers a new product in the catalog.
type AddProductRequest struct {
	Barcode  int64   `json:"bcode"`
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	Proteins float64 `json:"B"`
	Fats     float64 `json:"Z"`
	Carbs    float64 `json:"U"`
	Mass     int     `json:"mass"`
}

// ConsumeRequest records a consumed mass of a known product.
type ConsumeRequest struct {
	ProductID    int    `json:"productId"`
	Time         string `json:"time"`
	MassConsumed int    `json:"massConsumed"`
}
