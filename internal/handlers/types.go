package handlers

import "time"

// MappingBody is the JSON representation of a mapping.
type MappingBody struct {
	ID        string    `doc:"Unique mapping id"  example:"0192f0c4-7a4e-7d3c-9a51-1f7a5b7c2e10" json:"id"`
	Code      string    `doc:"The short code"     example:"ABCDEF"                               json:"code"`
	ShortURL  string    `doc:"The full short URL" example:"https://short-url/ABCDEF"             json:"shortUrl"`
	LongURL   string    `doc:"The original URL"   example:"https://example.com/very/long/path"   json:"longUrl"`
	CreatedAt time.Time `doc:"Creation time"                                                     json:"createdAt"`
}

// CreateMappingRequest is the request body for creating a short URL.
type CreateMappingRequest struct {
	Body struct {
		URL  string `doc:"The URL to shorten"                                    example:"https://example.com/very/long/path" json:"url"`
		Code string `doc:"Desired short code; a random one is generated if empty" example:"MYCODE"                             json:"code,omitempty"`
	}
}

// CreateMappingResponse is the response for a successfully created short URL.
type CreateMappingResponse struct {
	Headers struct {
		Location string `doc:"The short URL" header:"Location"`
	}
	Body MappingBody
}

// CodeRequest addresses one of the caller's mappings.
type CodeRequest struct {
	Code string `doc:"The short code" example:"ABCDEF" path:"code"`
}

// MappingResponse wraps a single mapping.
type MappingResponse struct {
	Body MappingBody
}

// ListMappingsResponse lists the caller's mappings in creation order.
type ListMappingsResponse struct {
	Body struct {
		Items []MappingBody `doc:"Mappings in creation order" json:"items"`
	}
}

// RedirectResponse sends the client to the long URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `header:"Location"`
	}
}
