package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/blog-service/internal/domain"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

func TestTagService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tag, err := f.tags.Create(ctx, " rust ", "")
	require.NoError(t, err)
	assert.Equal(t, "rust", tag.Name)
	assert.Equal(t, domain.DefaultTagColor, tag.Color)

	_, err = f.tags.Create(ctx, "go", "#00ADD8")
	require.NoError(t, err)

	_, err = f.tags.Create(ctx, "rust", "#000000")
	assertDomainError(t, err, http.StatusConflict, apperrors.CodeTagExists)

	tags, err := f.tags.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "go", tags[0].Name)
	assert.Equal(t, "rust", tags[1].Name)
}
