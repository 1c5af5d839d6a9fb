package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/vitalchat/backend/internal/models"
	"github.com/pageza/vitalchat/backend/internal/service"
	"github.com/pageza/vitalchat/backend/internal/testhelpers"
	"github.com/pageza/vitalchat/backend/internal/types"
)

func decodeProfileRequest(t *testing.T, body string) *types.UpdateHealthProfileRequest {
	t.Helper()
	var req types.UpdateHealthProfileRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func TestSaveKeepsAllergyOrder(t *testing.T) {
	ctx := context.Background()
	svc := service.NewProfileService(testhelpers.NewMemoryProfileStore())

	saved, err := svc.Save(ctx, 1, decodeProfileRequest(t, `{"allergies":["nuts","","gluten"," "]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"nuts", "gluten"}, saved.Allergies)

	got, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"nuts", "gluten"}, got.Allergies)
}

func TestSaveAcceptsSingleAllergy(t *testing.T) {
	svc := service.NewProfileService(testhelpers.NewMemoryProfileStore())

	saved, err := svc.Save(context.Background(), 1, decodeProfileRequest(t, `{"allergies":"shellfish"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"shellfish"}, saved.Allergies)
}

func TestSaveIsFieldLevel(t *testing.T) {
	ctx := context.Background()
	svc := service.NewProfileService(testhelpers.NewMemoryProfileStore())

	_, err := svc.Save(ctx, 1, decodeProfileRequest(t, `{"age":28,"gender":"Female","height":165,"allergies":["eggs"]}`))
	require.NoError(t, err)

	saved, err := svc.Save(ctx, 1, decodeProfileRequest(t, `{"weight":60.5,"goals":"  build strength "}`))
	require.NoError(t, err)
	assert.Equal(t, 28, *saved.Age)
	assert.Equal(t, models.GenderFemale, *saved.Gender)
	assert.Equal(t, 165.0, *saved.HeightCm)
	assert.Equal(t, 60.5, *saved.WeightKg)
	assert.Equal(t, "build strength", saved.Goals)
	assert.Equal(t, []string{"eggs"}, saved.Allergies)
}

func TestSaveValidation(t *testing.T) {
	svc := service.NewProfileService(testhelpers.NewMemoryProfileStore())
	for name, body := range map[string]string{
		"unknown gender":  `{"gender":"robot"}`,
		"negative age":    `{"age":-1}`,
		"negative height": `{"height":-10}`,
		"negative weight": `{"weight":-0.5}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Save(context.Background(), 1, decodeProfileRequest(t, body))
			assert.ErrorIs(t, err, service.ErrValidation)
		})
	}

	_, err := svc.Save(context.Background(), 1, nil)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestGetAbsentProfile(t *testing.T) {
	svc := service.NewProfileService(testhelpers.NewMemoryProfileStore())

	profile, err := svc.Get(context.Background(), 9)
	require.NoError(t, err)
	assert.Nil(t, profile)

	exists, err := svc.Exists(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetProfileStoreError(t *testing.T) {
	store := testhelpers.NewMemoryProfileStore()
	store.GetErr = errors.New("mongo down")
	svc := service.NewProfileService(store)

	_, err := svc.Get(context.Background(), 1)
	assert.Error(t, err)
	_, err = svc.Exists(context.Background(), 1)
	assert.Error(t, err)
}

func TestAllergiesRejectNonStrings(t *testing.T) {
	var req types.UpdateHealthProfileRequest
	err := json.Unmarshal([]byte(`{"allergies":{"a":1}}`), &req)
	assert.Error(t, err)
}
