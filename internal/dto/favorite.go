package dto

type FavoriteToggleResponse struct {
	ProductID int64 `json:"productId"`
	Favorited bool  `json:"favorited"`
}
