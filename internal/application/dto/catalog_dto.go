package dto

import "time"

// NameRequest entrada para crear o renombrar editoriales y autores.
type NameRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// PublisherResponse salida de una editorial.
type PublisherResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthorResponse salida de un autor.
type AuthorResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublisherListResponse lista paginada de editoriales.
type PublisherListResponse struct {
	Items []PublisherResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// AuthorListResponse lista paginada de autores.
type AuthorListResponse struct {
	Items []AuthorResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
