package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Variant is the stock held for one color/size combination
type Variant struct {
	Color    string `bson:"color" json:"color"`
	Size     string `bson:"size" json:"size"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

// Product represents a helmet in the catalog
type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Price         float64            `bson:"price" json:"price"`
	Brand         string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Image         string             `bson:"image,omitempty" json:"image,omitempty"`
	Images        []string           `bson:"images,omitempty" json:"images,omitempty"`
	Stock         int                `bson:"stock" json:"stock"`
	Category      string             `bson:"category,omitempty" json:"category,omitempty"`
	Rating        float64            `bson:"rating,omitempty" json:"rating,omitempty"`
	Features      []string           `bson:"features,omitempty" json:"features,omitempty"`
	Colors        []string           `bson:"colors,omitempty" json:"colors,omitempty"`
	Sizes         []string           `bson:"sizes,omitempty" json:"sizes,omitempty"`
	Inventory     []Variant          `bson:"inventory,omitempty" json:"inventory,omitempty"`
	ColorImages   map[string]string  `bson:"colorImages,omitempty" json:"colorImages,omitempty"`
	Weight        string             `bson:"weight,omitempty" json:"weight,omitempty"`
	Certification []string           `bson:"certification,omitempty" json:"certification,omitempty"`
	InStock       bool               `bson:"-" json:"inStock"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Available reports whether any unit can be sold, either from the flat stock
// counter or from a color/size variant.
func (p *Product) Available() bool {
	if p.Stock > 0 {
		return true
	}
	for _, v := range p.Inventory {
		if v.Quantity > 0 {
			return true
		}
	}
	return false
}

// ProductUpdate is a partial product edit. Nil fields are left untouched.
type ProductUpdate struct {
	Name          *string            `json:"name"`
	Description   *string            `json:"description"`
	Price         *float64           `json:"price"`
	Brand         *string            `json:"brand"`
	Image         *string            `json:"image"`
	Images        *[]string          `json:"images"`
	Stock         *int               `json:"stock"`
	Category      *string            `json:"category"`
	Features      *[]string          `json:"features"`
	Colors        *[]string          `json:"colors"`
	Sizes         *[]string          `json:"sizes"`
	Inventory     *[]Variant         `json:"inventory"`
	ColorImages   *map[string]string `json:"colorImages"`
	Weight        *string            `json:"weight"`
	Certification *[]string          `json:"certification"`
}

func (u ProductUpdate) Empty() bool {
	return len(u.Fields()) == 0
}

// Fields returns the set fields keyed by their stored names
func (u ProductUpdate) Fields() bson.M {
	set := bson.M{}
	put := func(key string, isSet bool, v func() interface{}) {
		if isSet {
			set[key] = v()
		}
	}
	put("name", u.Name != nil, func() interface{} { return *u.Name })
	put("description", u.Description != nil, func() interface{} { return *u.Description })
	put("price", u.Price != nil, func() interface{} { return *u.Price })
	put("brand", u.Brand != nil, func() interface{} { return *u.Brand })
	put("image", u.Image != nil, func() interface{} { return *u.Image })
	put("images", u.Images != nil, func() interface{} { return *u.Images })
	put("stock", u.Stock != nil, func() interface{} { return *u.Stock })
	put("category", u.Category != nil, func() interface{} { return *u.Category })
	put("features", u.Features != nil, func() interface{} { return *u.Features })
	put("colors", u.Colors != nil, func() interface{} { return *u.Colors })
	put("sizes", u.Sizes != nil, func() interface{} { return *u.Sizes })
	put("inventory", u.Inventory != nil, func() interface{} { return *u.Inventory })
	put("colorImages", u.ColorImages != nil, func() interface{} { return *u.ColorImages })
	put("weight", u.Weight != nil, func() interface{} { return *u.Weight })
	put("certification", u.Certification != nil, func() interface{} { return *u.Certification })
	return set
}

// Apply copies the set fields onto p
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Brand != nil {
		p.Brand = *u.Brand
	}
	if u.Image != nil {
		p.Image = *u.Image
	}
	if u.Images != nil {
		p.Images = *u.Images
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Features != nil {
		p.Features = *u.Features
	}
	if u.Colors != nil {
		p.Colors = *u.Colors
	}
	if u.Sizes != nil {
		p.Sizes = *u.Sizes
	}
	if u.Inventory != nil {
		p.Inventory = *u.Inventory
	}
	if u.ColorImages != nil {
		p.ColorImages = *u.ColorImages
	}
	if u.Weight != nil {
		p.Weight = *u.Weight
	}
	if u.Certification != nil {
		p.Certification = *u.Certification
	}
}
