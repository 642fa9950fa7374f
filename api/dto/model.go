package dto

import "time"

// LocationReference - ссылка на локацию внутри персонажа (origin, location).
type LocationReference struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// EpisodeReference - ссылка на эпизод. Удалённый API отдаёт только URL,
// поэтому Name заполняется, если эпизод был загружен отдельно.
type EpisodeReference struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url"`
}

type CharacterRecord struct {
	ID       int                `json:"id"`
	Name     string             `json:"name"`
	Status   string             `json:"status"`
	Species  string             `json:"species"`
	Type     string             `json:"type"`
	Gender   string             `json:"gender"`
	Origin   LocationReference  `json:"origin"`
	Location LocationReference  `json:"location"`
	Image    string             `json:"image"`
	Episodes []EpisodeReference `json:"episodes"`
	URL      string             `json:"url"`
	Created  time.Time          `json:"created"`
}

type EpisodeRecord struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	AirDate    string    `json:"air_date"`
	Code       string    `json:"code"`
	Characters []string  `json:"characters"`
	URL        string    `json:"url"`
	Created    time.Time `json:"created"`
}

type LocationRecord struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Dimension string    `json:"dimension"`
	Residents []string  `json:"residents"`
	URL       string    `json:"url"`
	Created   time.Time `json:"created"`
}

type PageInfo struct {
	Count int     `json:"count"`
	Pages int     `json:"pages"`
	Next  *string `json:"next"`
	Prev  *string `json:"prev"`
}

type Page[T any] struct {
	Results []T      `json:"results"`
	Info    PageInfo `json:"info"`
}

// EmptyPage - результат листинга при ошибке: одна страница без элементов.
func EmptyPage[T any]() Page[T] {
	return Page[T]{Results: []T{}, Info: PageInfo{Pages: 1}}
}

/* ---------- результаты агрегаций ---------- */

type LocationCharacters struct {
	Location   LocationReference `json:"location"`
	Characters []CharacterRecord `json:"characters"`
}

type EpisodeCharacters struct {
	Episode    *EpisodeRecord    `json:"episode"`
	Characters []CharacterRecord `json:"characters"`
}

type CharacterDetail struct {
	Character *CharacterRecord `json:"character"`
	Dimension *string          `json:"dimension"`
}

type DimensionCharacters struct {
	Dimension  string            `json:"dimension"`
	Characters []CharacterRecord `json:"characters"`
}
