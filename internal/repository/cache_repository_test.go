package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	assert.False(t, repo.Enabled())

	var dest map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "planner:timetable:current", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "planner:timetable:current", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "planner:timetable:current"))
	assert.NoError(t, repo.DeleteByPattern(ctx, "planner:*"))

	count, err := repo.Increment(ctx, "ratelimit:auth:127.0.0.1", time.Minute)
	assert.NoError(t, err)
	assert.Zero(t, count)
	assert.NoError(t, repo.Close())
}
