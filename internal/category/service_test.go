package category

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ramyeon-storefront/internal/httpclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetCategories(ctx context.Context) ([]*Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Category), args.Error(1)
}

func (m *MockRepository) GetCategory(ctx context.Context, id string) (*Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) GetSubcategories(ctx context.Context, categoryID string) ([]*Subcategory, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Subcategory), args.Error(1)
}

func TestService_GetCategories(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, time.Minute, 16, nil)

		mockRepo.On("GetCategories", ctx).Return([]*Category{{ID: "c1", Name: "Noodles"}}, nil).Once()

		res, err := svc.GetCategories(ctx)
		assert.NoError(t, err)
		assert.Len(t, res, 1)

		// second call is served from cache
		_, err = svc.GetCategories(ctx)
		assert.NoError(t, err)
		mockRepo.AssertNumberOfCalls(t, "GetCategories", 1)
	})

	t.Run("Error", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, time.Minute, 16, nil)

		mockRepo.On("GetCategories", ctx).Return(nil, errors.New("db error"))

		_, err := svc.GetCategories(ctx)
		assert.Error(t, err)
	})

	t.Run("EmptyIsNotNil", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, time.Minute, 16, nil)
		mockRepo.On("GetCategories", ctx).Return(nil, nil)

		res, err := svc.GetCategories(ctx)
		assert.NoError(t, err)
		assert.NotNil(t, res)
		assert.Empty(t, res)
	})
}

func TestService_GetCategory(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo, time.Minute, 16, nil)

	mockRepo.On("GetCategory", ctx, "c1").Return(&Category{ID: "c1", Name: "Noodles"}, nil).Once()

	c, err := svc.GetCategory(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Noodles", c.Name)

	_, err = svc.GetCategory(ctx, "c1")
	require.NoError(t, err)
	mockRepo.AssertNumberOfCalls(t, "GetCategory", 1)
}

func TestService_Hierarchy(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo, time.Minute, 16, nil)

	mockRepo.On("GetCategories", ctx).Return([]*Category{
		{ID: "c1", Name: "Noodles"},
		{ID: "c2", Name: "Drinks"},
	}, nil)
	mockRepo.On("GetSubcategories", ctx, "c1").Return([]*Subcategory{{ID: "s1", CategoryID: "c1", Name: "Spicy"}}, nil)
	mockRepo.On("GetSubcategories", ctx, "c2").Return(nil, errors.New("timeout"))

	tree, err := svc.Hierarchy(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Len(t, tree[0].Subcategories, 1)
	assert.Empty(t, tree[1].Subcategories)

	svc.ClearCache()
	_, err = svc.GetCategories(ctx)
	require.NoError(t, err)
	mockRepo.AssertNumberOfCalls(t, "GetCategories", 2)
}

func TestRepository_GetSubcategories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/category/c1/subcategories/", r.URL.Path)
		w.Write([]byte(`{"success":true,"subcategories":[{"_id":"s1","name":"Spicy"}]}`))
	}))
	defer srv.Close()

	subs, err := NewRepository(httpclient.New(srv.URL)).GetSubcategories(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "s1", subs[0].ID)
	assert.Equal(t, "c1", subs[0].CategoryID)
}

func TestRepository_GetCategories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/category/", r.URL.Path)
		w.Write([]byte(`[{"id":"c1","name":"Noodles"}]`))
	}))
	defer srv.Close()

	cats, err := NewRepository(httpclient.New(srv.URL)).GetCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Noodles", cats[0].Name)
}
