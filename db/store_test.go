package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/kindred/db"
	"github.com/danielhkuo/kindred/models"
	"github.com/danielhkuo/kindred/testutil"
)

func TestAnswerUpsertAndDelete(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()
	userID := testutil.CreateTestProfile(t, store, "Ada", "Lovelace")

	require.NoError(t, store.UpsertAnswer(ctx, userID, "smoker", models.String("Yes")))
	require.NoError(t, store.UpsertAnswer(ctx, userID, "cigarettes_per_day", models.Number(5)))
	require.NoError(t, store.UpsertAnswer(ctx, userID, "ethnicity", models.List("Irish", "Italian")))

	// Upsert replaces
	require.NoError(t, store.UpsertAnswer(ctx, userID, "smoker", models.String("No")))

	set, err := store.GetAnswerSet(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, set, 3)
	assert.True(t, set["smoker"].Equal(models.String("No")))
	assert.True(t, set["cigarettes_per_day"].Equal(models.Number(5)))
	assert.True(t, set["ethnicity"].Equal(models.List("Irish", "Italian")))

	require.NoError(t, store.DeleteAnswer(ctx, userID, "cigarettes_per_day"))
	require.NoError(t, store.DeleteAnswer(ctx, userID, "never_answered"))

	answers, err := store.GetAnswers(ctx, userID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, "ethnicity", answers[0].QuestionID)
	assert.Equal(t, "smoker", answers[1].QuestionID)
}

func TestAnswersAreScopedByUser(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()
	alice := testutil.CreateTestProfile(t, store, "Alice", "A")
	bob := testutil.CreateTestProfile(t, store, "Bob", "B")

	testutil.SaveTestAnswers(t, store, alice, models.AnswerSet{"religion": models.String("Jewish")})

	set, err := store.GetAnswerSet(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestGetProfile(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()

	missing, err := store.GetProfile(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	userID := testutil.CreateTestProfile(t, store, "John", "Doe")
	p, err := store.GetProfile(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "John", p.FirstName)
	assert.Equal(t, "Doe", p.LastName)
	assert.Empty(t, p.Fields)
}

func TestUpdateProfileFields(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()
	userID := testutil.CreateTestProfile(t, store, "John", "Doe")

	require.NoError(t, store.UpdateProfileFields(ctx, userID, map[string]string{
		models.FieldFirstName: "Jane",
		"date_of_birth":       "1990-01-01",
	}))
	require.NoError(t, store.UpdateProfileFields(ctx, userID, map[string]string{
		"date_of_birth": "1991-02-02",
	}))

	p, err := store.GetProfile(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Jane", p.FirstName)
	assert.Equal(t, "Doe", p.LastName)
	assert.Equal(t, map[string]string{"date_of_birth": "1991-02-02"}, p.Fields)
}

func TestUpdateProfileFieldsCreatesProfile(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpdateProfileFields(ctx, "new-user", map[string]string{
		models.FieldLastName: "Smith",
	}))

	p, err := store.GetProfile(ctx, "new-user")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "", p.FirstName)
	assert.Equal(t, "Smith", p.LastName)
}

func TestCreateSchemaIsIdempotent(t *testing.T) {
	store := testutil.SetupTestStore(t)
	// SetupTestStore already created it once
	require.NoError(t, db.CreateSchema(context.Background(), store.DB()))
}

func TestProfileAnswers(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()

	_, err := store.ProfileAnswers(ctx, "nobody")
	assert.ErrorIs(t, err, db.ErrNotFound)

	userID := testutil.CreateTestProfile(t, store, "Ada", "Lovelace")
	set, err := store.ProfileAnswers(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, set)

	testutil.SaveTestAnswers(t, store, userID, models.AnswerSet{"religion": models.String("None")})
	set, err = store.ProfileAnswers(ctx, userID)
	require.NoError(t, err)
	assert.True(t, set.Get("religion").Equal(models.String("None")))
}
