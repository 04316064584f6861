package service

// Pageable describes the requested slice of the catalog.
type Pageable struct {
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
	Offset     int64 `json:"offset"`
}

// PageDto is one page of products plus pagination metadata.
type PageDto struct {
	Content          []ProductDto `json:"content"`
	Pageable         Pageable     `json:"pageable"`
	TotalElements    int64        `json:"totalElements"`
	TotalPages       int          `json:"totalPages"`
	Size             int          `json:"size"`
	Number           int          `json:"number"`
	NumberOfElements int          `json:"numberOfElements"`
	First            bool         `json:"first"`
	Last             bool         `json:"last"`
	Empty            bool         `json:"empty"`
}

// newPage builds the page metadata. An empty catalog has zero pages and its only page is the last one.
func newPage(content []ProductDto, page, size int, total int64) *PageDto {
	totalPages := int((total + int64(size) - 1) / int64(size))
	return &PageDto{
		Content: content,
		Pageable: Pageable{
			PageNumber: page,
			PageSize:   size,
			Offset:     int64(page) * int64(size),
		},
		TotalElements:    total,
		TotalPages:       totalPages,
		Size:             size,
		Number:           page,
		NumberOfElements: len(content),
		First:            page == 0,
		Last:             page+1 >= totalPages,
		Empty:            len(content) == 0,
	}
}
