package dto

import "rnm-aggregator/internal/integration"

// Функции маппинга чистые: без ввода-вывода и без ошибок.
// nil списки из ответа превращаются в пустые, чтобы в JSON не было null.

func MapCharacter(raw integration.Character) CharacterRecord {
	return CharacterRecord{
		ID:       raw.ID,
		Name:     raw.Name,
		Status:   raw.Status,
		Species:  raw.Species,
		Type:     raw.Type,
		Gender:   raw.Gender,
		Origin:   mapLocationReference(raw.Origin),
		Location: mapLocationReference(raw.Location),
		Image:    raw.Image,
		Episodes: mapEpisodeReferences(raw.Episode),
		URL:      raw.URL,
		Created:  raw.Created,
	}
}

func MapAllCharacters(raws []integration.Character) []CharacterRecord {
	records := make([]CharacterRecord, 0, len(raws))
	for _, raw := range raws {
		records = append(records, MapCharacter(raw))
	}
	return records
}

func MapLocation(raw integration.Location) LocationRecord {
	return LocationRecord{
		ID:        raw.ID,
		Name:      raw.Name,
		Type:      raw.Type,
		Dimension: raw.Dimension,
		Residents: nonNil(raw.Residents),
		URL:       raw.URL,
		Created:   raw.Created,
	}
}

func MapAllLocations(raws []integration.Location) []LocationRecord {
	records := make([]LocationRecord, 0, len(raws))
	for _, raw := range raws {
		records = append(records, MapLocation(raw))
	}
	return records
}

func MapEpisode(raw integration.Episode) EpisodeRecord {
	return EpisodeRecord{
		ID:         raw.ID,
		Name:       raw.Name,
		AirDate:    raw.AirDate,
		Code:       raw.Episode,
		Characters: nonNil(raw.Characters),
		URL:        raw.URL,
		Created:    raw.Created,
	}
}

func MapAllEpisodes(raws []integration.Episode) []EpisodeRecord {
	records := make([]EpisodeRecord, 0, len(raws))
	for _, raw := range raws {
		records = append(records, MapEpisode(raw))
	}
	return records
}

func MapPageInfo(raw integration.PageInfo) PageInfo {
	return PageInfo{
		Count: raw.Count,
		Pages: raw.Pages,
		Next:  raw.Next,
		Prev:  raw.Prev,
	}
}

func mapLocationReference(raw integration.Reference) LocationReference {
	return LocationReference{Name: raw.Name, URL: raw.URL}
}

func mapEpisodeReferences(urls []string) []EpisodeReference {
	refs := make([]EpisodeReference, 0, len(urls))
	for _, u := range urls {
		refs = append(refs, EpisodeReference{URL: u})
	}
	return refs
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
