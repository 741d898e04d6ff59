package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/kathputli/internal/geom"
	"github.com/ayusman/kathputli/internal/puppet"
	"github.com/ayusman/kathputli/internal/rig"
)

func testProfile(name string) *Profile {
	r := rig.DefaultConfig()
	r.BodyTilt = 0.5
	render := puppet.DefaultConfig()
	render.Anchor = puppet.AnchorTracked
	return &Profile{Name: name, Rig: r, Render: render}
}

func TestProfileRepository_Create(t *testing.T) {
	s := newTestStore(t)
	repo := s.Profiles()

	p := testProfile("studio")
	require.NoError(t, repo.Create(p))
	assert.NotEmpty(t, p.ID, "Create should assign an id")
	assert.False(t, p.CreatedAt.IsZero())

	got, err := repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "studio", got.Name)
	assert.Equal(t, 0.5, got.Rig.BodyTilt)
	assert.Equal(t, puppet.AnchorTracked, got.Render.Anchor)
	require.NotNil(t, got.Rig.Joints[rig.RightUpperArm].Clamp)
	assert.Equal(t, geom.Range{Min: 0.2, Max: 1.21}, *got.Rig.Joints[rig.RightUpperArm].Clamp)
	assert.Nil(t, got.Rig.Joints[rig.LeftUpperArm].Clamp)

	byName, err := repo.GetByName("studio")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byName.ID)
}

func TestProfileRepository_Create_KeepsID(t *testing.T) {
	s := newTestStore(t)

	p := testProfile("fixed-id")
	p.ID = "profile-1"
	require.NoError(t, s.Profiles().Create(p))
	assert.Equal(t, "profile-1", p.ID)
}

func TestProfileRepository_Create_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	repo := s.Profiles()

	require.NoError(t, repo.Create(testProfile("stage")))
	assert.Error(t, repo.Create(testProfile("stage")))
}

func TestProfileRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Profiles()

	empty, err := repo.List()
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(testProfile(name)))
	}

	all, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProfileRepository_Update(t *testing.T) {
	s := newTestStore(t)
	repo := s.Profiles()

	p := testProfile("before")
	require.NoError(t, repo.Create(p))

	p.Name = "after"
	p.Render.Chain = puppet.ChainChained
	require.NoError(t, repo.Update(p))

	got, err := repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Name)
	assert.Equal(t, puppet.ChainChained, got.Render.Chain)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestProfileRepository_NotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Profiles()

	_, err := repo.GetByID("missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = repo.GetByName("missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.True(t, errors.Is(repo.Update(&Profile{ID: "missing", Name: "x"}), ErrNotFound))
	assert.True(t, errors.Is(repo.Delete("missing"), ErrNotFound))
}

func TestProfileRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Profiles()

	p := testProfile("gone")
	require.NoError(t, repo.Create(p))
	require.NoError(t, repo.Delete(p.ID))

	_, err := repo.GetByID(p.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}
