package staff

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tressly/tressly/internal/test_utils"
)

func setupRepoTest(t *testing.T) (*StaffRepoImpl, context.Context) {
	db := test_utils.SetupTestDB(t)
	return NewStaffRepo(db), context.Background()
}

func TestStaffRepoImpl_CreateAndGet(t *testing.T) {
	repo, ctx := setupRepoTest(t)

	id, err := repo.Create(ctx, Staff{Name: "Carla", Role: "Stylist", Active: true})

	require.NoError(t, err)
	member, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Carla", member.Name)
	assert.Equal(t, "Stylist", member.Role)
	assert.True(t, member.Active)
}

func TestStaffRepoImpl_GetNotFound(t *testing.T) {
	repo, ctx := setupRepoTest(t)

	_, err := repo.Get(ctx, 42)

	assert.ErrorIs(t, err, ErrStaffNotFound)
}

func TestStaffRepoImpl_GetAllFiltersInactive(t *testing.T) {
	repo, ctx := setupRepoTest(t)
	activeId, err := repo.Create(ctx, Staff{Name: "Carla", Role: "Stylist", Active: true})
	require.NoError(t, err)
	inactiveId, err := repo.Create(ctx, Staff{Name: "Jordi", Role: "Barber", Active: true})
	require.NoError(t, err)
	ok, err := repo.Deactivate(ctx, inactiveId)
	require.NoError(t, err)
	require.True(t, ok)

	active, err := repo.GetAll(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, activeId, active[0].Id)

	all, err := repo.GetAll(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStaffRepoImpl_Update(t *testing.T) {
	repo, ctx := setupRepoTest(t)
	id, err := repo.Create(ctx, Staff{Name: "Carla", Role: "Stylist", Active: true})
	require.NoError(t, err)

	ok, err := repo.Update(ctx, Staff{Id: id, Name: "Carla M.", Role: "Senior Stylist", Active: true})

	require.NoError(t, err)
	assert.True(t, ok)
	member, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Carla M.", member.Name)
	assert.Equal(t, "Senior Stylist", member.Role)
}

func TestStaffRepoImpl_UpdateMissing(t *testing.T) {
	repo, ctx := setupRepoTest(t)

	ok, err := repo.Update(ctx, Staff{Id: 42, Name: "Nobody"})

	require.NoError(t, err)
	assert.False(t, ok)
}
