package rentease

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
)

// PropertyDraft is the landlord-supplied portion of a listing, sent as the
// JSON part of the multipart create/update payload.
type PropertyDraft struct {
	Title             string   `json:"title"`
	Type              string   `json:"type"`
	Description       string   `json:"description"`
	Address           string   `json:"address"`
	Neighborhood      string   `json:"neighborhood"`
	City              string   `json:"city"`
	District          string   `json:"district"`
	Bedrooms          int      `json:"bedrooms"`
	Bathrooms         float64  `json:"bathrooms"`
	Area              float64  `json:"area"`
	YearBuilt         int      `json:"yearBuilt,omitempty"`
	ParkingSpaces     int      `json:"parkingSpaces,omitempty"`
	Furnished         string   `json:"furnished,omitempty"`
	Amenities         []string `json:"amenities,omitempty"`
	VideoURL          string   `json:"videoUrl,omitempty"`
	Price             float64  `json:"price"`
	Deposit           float64  `json:"deposit"`
	AvailableFrom     Date     `json:"availableFrom"`
	MinLeaseMonths    int      `json:"minLeaseMonths"`
	UtilitiesIncluded []string `json:"utilitiesIncluded,omitempty"`
	Pets              string   `json:"pets,omitempty"`
	Smoking           string   `json:"smoking,omitempty"`
	Events            string   `json:"events,omitempty"`
	MaxOccupants      int      `json:"maxOccupants"`
}

// ImageFile is an uploaded listing photo forwarded to the backend.
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ListProperties returns all visible properties.
func (c *Client) ListProperties(ctx context.Context) ([]Property, error) {
	var properties []Property
	if err := c.get(ctx, "/properties", nil, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

// ListAvailableProperties returns properties open for booking.
func (c *Client) ListAvailableProperties(ctx context.Context) ([]Property, error) {
	var properties []Property
	if err := c.get(ctx, "/properties/available", nil, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

// GetProperty returns a single property by ID.
func (c *Client) GetProperty(ctx context.Context, propertyID int64) (*Property, error) {
	var property Property
	path := fmt.Sprintf("/properties/%d", propertyID)
	if err := c.get(ctx, path, nil, &property); err != nil {
		return nil, err
	}
	return &property, nil
}

// ListLandlordProperties returns all properties owned by a landlord,
// regardless of status.
func (c *Client) ListLandlordProperties(ctx context.Context, landlordID int64) ([]Property, error) {
	var properties []Property
	path := fmt.Sprintf("/properties/landlord/%d", landlordID)
	if err := c.get(ctx, path, nil, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

// CreateProperty submits a new listing. The backend expects a multipart body
// with a JSON part named "property" and zero or more "images" file parts.
func (c *Client) CreateProperty(ctx context.Context, draft PropertyDraft, images []ImageFile, landlordID int64) (*Property, error) {
	body, contentType, err := buildPropertyBody(draft, images)
	if err != nil {
		return nil, err
	}

	query := url.Values{"landlordId": {strconv.FormatInt(landlordID, 10)}}
	var created Property
	if err := c.sendMultipart(ctx, http.MethodPost, "/properties", query, body, contentType, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProperty replaces an existing listing with the same multipart shape
// as CreateProperty.
func (c *Client) UpdateProperty(ctx context.Context, propertyID int64, draft PropertyDraft, images []ImageFile, landlordID int64) (*Property, error) {
	body, contentType, err := buildPropertyBody(draft, images)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/properties/%d", propertyID)
	query := url.Values{"landlordId": {strconv.FormatInt(landlordID, 10)}}
	var updated Property
	if err := c.sendMultipart(ctx, http.MethodPut, path, query, body, contentType, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProperty removes a listing. The backend enforces ownership via the
// landlordId query parameter.
func (c *Client) DeleteProperty(ctx context.Context, propertyID, landlordID int64) error {
	path := fmt.Sprintf("/properties/%d", propertyID)
	query := url.Values{"landlordId": {strconv.FormatInt(landlordID, 10)}}
	return c.deleteJSON(ctx, path, query, nil, nil)
}

// buildPropertyBody assembles the multipart payload for property writes.
func buildPropertyBody(draft PropertyDraft, images []ImageFile) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="property"`)
	header.Set("Content-Type", "application/json")
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("creating property part: %w", err)
	}
	if err := writeJSON(part, draft); err != nil {
		return nil, "", fmt.Errorf("encoding property part: %w", err)
	}

	for _, img := range images {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="images"; filename=%q`, img.Filename))
		if img.ContentType != "" {
			header.Set("Content-Type", img.ContentType)
		}
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("creating image part: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", fmt.Errorf("writing image part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}
