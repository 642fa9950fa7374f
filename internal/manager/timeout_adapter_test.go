package manager

import (
	"context"
	"rnm-aggregator/api/dto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubManager фиксирует контекст вызова и может паниковать.
type stubManager struct {
	panics   bool
	deadline time.Time
	hasDL    bool
}

func (s *stubManager) observe(ctx context.Context) {
	s.deadline, s.hasDL = ctx.Deadline()
	if s.panics {
		panic("boom")
	}
}

func (s *stubManager) ListCharacters(ctx context.Context, page int) dto.Page[dto.CharacterRecord] {
	s.observe(ctx)
	return dto.Page[dto.CharacterRecord]{Results: []dto.CharacterRecord{{ID: page}}, Info: dto.PageInfo{Pages: 3}}
}

func (s *stubManager) ListLocations(ctx context.Context, page int) dto.Page[dto.LocationRecord] {
	s.observe(ctx)
	return dto.Page[dto.LocationRecord]{Results: []dto.LocationRecord{{ID: page}}}
}

func (s *stubManager) ListEpisodes(ctx context.Context, page int) dto.Page[dto.EpisodeRecord] {
	s.observe(ctx)
	return dto.Page[dto.EpisodeRecord]{Results: []dto.EpisodeRecord{{ID: page}}}
}

func (s *stubManager) CharactersByDimension(ctx context.Context, _ string) []dto.CharacterRecord {
	s.observe(ctx)
	return []dto.CharacterRecord{{ID: 1}}
}

func (s *stubManager) CharactersByLocation(ctx context.Context, name string) dto.LocationCharacters {
	s.observe(ctx)
	return dto.LocationCharacters{Location: dto.LocationReference{Name: name, URL: "u"}, Characters: []dto.CharacterRecord{{ID: 1}}}
}

func (s *stubManager) CharactersByEpisode(ctx context.Context, _ string) dto.EpisodeCharacters {
	s.observe(ctx)
	return dto.EpisodeCharacters{Episode: &dto.EpisodeRecord{ID: 1}, Characters: []dto.CharacterRecord{}}
}

func (s *stubManager) CharacterDetail(ctx context.Context, id int) dto.CharacterDetail {
	s.observe(ctx)
	return dto.CharacterDetail{Character: &dto.CharacterRecord{ID: id}}
}

func TestTimeoutAdapter_AppliesDeadline(t *testing.T) {
	stub := &stubManager{}
	a := NewTimeoutManagerAdapter(stub, 2*time.Second)

	start := time.Now()
	got := a.CharacterDetail(context.Background(), 7)

	require.NotNil(t, got.Character)
	assert.Equal(t, 7, got.Character.ID)
	require.True(t, stub.hasDL)
	assert.WithinDuration(t, start.Add(2*time.Second), stub.deadline, time.Second)
}

func TestTimeoutAdapter_DefaultTimeout(t *testing.T) {
	a := NewTimeoutManagerAdapter(&stubManager{}, 0)
	assert.Equal(t, defaultTimeout, a.timeout)
}

func TestTimeoutAdapter_PassesThrough(t *testing.T) {
	a := NewTimeoutManagerAdapter(&stubManager{}, time.Second)
	ctx := context.Background()

	assert.Equal(t, 2, a.ListCharacters(ctx, 2).Results[0].ID)
	assert.Equal(t, 3, a.ListLocations(ctx, 3).Results[0].ID)
	assert.Equal(t, 4, a.ListEpisodes(ctx, 4).Results[0].ID)
	assert.Len(t, a.CharactersByDimension(ctx, "unknown"), 1)
	assert.Equal(t, "u", a.CharactersByLocation(ctx, "Citadel").Location.URL)
	assert.NotNil(t, a.CharactersByEpisode(ctx, "1").Episode)
}

func TestTimeoutAdapter_PanicReturnsEmptyResult(t *testing.T) {
	a := NewTimeoutManagerAdapter(&stubManager{panics: true}, time.Second)
	ctx := context.Background()
	before := fallbacks("charactersByLocation")

	page := a.ListCharacters(ctx, 1)
	assert.Equal(t, dto.EmptyPage[dto.CharacterRecord](), page)

	loc := a.CharactersByLocation(ctx, "Citadel")
	assert.Equal(t, "Citadel", loc.Location.Name)
	assert.Empty(t, loc.Location.URL)
	assert.NotNil(t, loc.Characters)
	assert.Equal(t, before+1, fallbacks("charactersByLocation"))

	assert.Nil(t, a.CharactersByEpisode(ctx, "1").Episode)
	assert.Nil(t, a.CharacterDetail(ctx, 1).Character)
	assert.NotNil(t, a.CharactersByDimension(ctx, "x"))
}
