package domain

import "fmt"

const fallbackImage = "/bulgogi.svg"

// FallbackMissions is the fixed cyclic mission sequence used when the Order
// Service cannot supply one. Fallback missions never constrain toppings.
var FallbackMissions = []Mission{
	{
		ID:    "m1",
		Title: "베이컨토마토블루베리버거",
		Requirements: []Requirement{
			{Name: "불고기버거 세트", Quantity: 2},
			{Name: "감자튀김", Quantity: 1},
			{Name: "콜라", Quantity: 1},
			{Name: "사이다", Quantity: 1},
		},
	},
	{
		ID:    "m2",
		Title: "햄버거 세트 주문",
		Requirements: []Requirement{
			{Name: "불고기버거 세트", Quantity: 1},
			{Name: "콜라", Quantity: 2},
		},
	},
	{
		ID:    "m3",
		Title: "기본 버거 주문",
		Requirements: []Requirement{
			{Name: "불고기버거", Quantity: 2},
			{Name: "감자튀김", Quantity: 1},
		},
	},
}

// FallbackCatalog builds the static menu table used when the Order Service
// cannot provide menu detail. It carries no topping groups.
func FallbackCatalog() Catalog {
	return Catalog{
		{Name: "버거", Items: fallbackItems("burger", "불고기버거", 8)},
		{Name: "세트", Items: fallbackItems("set", "불고기버거 세트", 6)},
		{Name: "음료", Items: fallbackItems("drink", "콜라", 6)},
		{Name: "기타", Items: fallbackItems("etc", "감자튀김", 6)},
	}
}

func fallbackItems(prefix, name string, n int) []MenuItem {
	items := make([]MenuItem, n)
	for i := range items {
		items[i] = MenuItem{
			ID:    fmt.Sprintf("%s-%d", prefix, i+1),
			Name:  name,
			Image: fallbackImage,
		}
	}
	return items
}
