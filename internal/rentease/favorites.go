package rentease

import (
	"context"
	"fmt"
)

// favoriteRequest is the body for favorite add/remove calls.
type favoriteRequest struct {
	PropertyID int64 `json:"propertyId"`
}

// ListFavorites returns a tenant's favorites, each carrying its property.
func (c *Client) ListFavorites(ctx context.Context, tenantID int64) ([]Favorite, error) {
	var favorites []Favorite
	path := fmt.Sprintf("/users/%d/favorites", tenantID)
	if err := c.get(ctx, path, nil, &favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}

// AddFavorite marks a property as favorited for the tenant.
func (c *Client) AddFavorite(ctx context.Context, tenantID, propertyID int64) error {
	path := fmt.Sprintf("/users/%d/favorites", tenantID)
	return c.postJSON(ctx, path, favoriteRequest{PropertyID: propertyID}, nil)
}

// RemoveFavorite clears a property from the tenant's favorites.
func (c *Client) RemoveFavorite(ctx context.Context, tenantID, propertyID int64) error {
	path := fmt.Sprintf("/users/%d/favorites", tenantID)
	return c.deleteJSON(ctx, path, nil, favoriteRequest{PropertyID: propertyID}, nil)
}
