package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Hotel - отель из сервиса данных о направлениях.
type Hotel struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	ImageURL        string   `json:"image_url,omitempty"`
	PriceRange      string   `json:"price_range,omitempty"`
	Rating          float64  `json:"rating"`
	DestinationID   string   `json:"destination_id,omitempty"`
	DestinationName string   `json:"destination_name,omitempty"`
	Amenities       TextList `json:"amenities,omitempty"`
	RoomTypes       TextList `json:"room_types,omitempty"`
	Features        TextList `json:"features,omitempty"`
	CostPerNight    float64  `json:"cost_per_night"`
	Latitude        float64  `json:"latitude,omitempty"`
	Longitude       float64  `json:"longitude,omitempty"`
	Address         string   `json:"address,omitempty"`
	ContactNumber   string   `json:"contact_number,omitempty"`
	Website         string   `json:"website,omitempty"`
	CheckInTime     string   `json:"check_in_time,omitempty"`
	CheckOutTime    string   `json:"check_out_time,omitempty"`
}

// TextList принимает как массив строк, так и строку через запятую.
type TextList []string

func (l *TextList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("decode text list: %w", err)
	}
	out := make([]string, 0)
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*l = out
	return nil
}

// HotelFilter - параметры поиска отелей.
type HotelFilter struct {
	Destination string
	MinRating   float64
	Amenities   []string
}

func (f HotelFilter) query() url.Values {
	values := url.Values{}
	if f.Destination != "" {
		values.Set("destination", f.Destination)
	}
	if f.MinRating > 0 {
		values.Set("rating", strconv.FormatFloat(f.MinRating, 'f', -1, 64))
	}
	if len(f.Amenities) > 0 {
		values.Set("amenities", strings.Join(f.Amenities, ","))
	}
	return values
}

// SearchHotels ищет отели в сервисе данных по направлению, рейтингу и удобствам.
func (p *HTTPPlanner) SearchHotels(ctx context.Context, filter HotelFilter) ([]Hotel, error) {
	path := "/hotels/search"
	if query := filter.query().Encode(); query != "" {
		path += "?" + query
	}

	body, err := p.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	hotels := make([]Hotel, 0)
	if err := json.Unmarshal(body, &hotels); err != nil {
		return nil, fmt.Errorf("decode hotels response: %w", err)
	}
	return hotels, nil
}
