package templatecache

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/require"
)

const testKey = keyPrefix + "user-1"

func TestLoadReturnsStoredTemplate(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(testKey).SetVal(`{"perceivedEffort":"7","exercises":[{"name":"Deadlift","sets":[{"weightKg":"120","reps":"3"}]}]}`)

	cache := New(NewRedisKV(client))
	template := cache.Load(context.Background(), "user-1")

	require.Equal(t, "7", template.PerceivedEffort)
	require.Len(t, template.Exercises, 1)
	require.Equal(t, "Deadlift", template.Exercises[0].Name)
	require.Equal(t, "120", template.Exercises[0].Sets[0].WeightKg)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadFallsBackToDefaultWhenMissing(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(testKey).RedisNil()

	cache := New(NewRedisKV(client))
	template := cache.Load(context.Background(), "user-1")

	require.Equal(t, Default(), template)
}

func TestLoadIgnoresMalformedData(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(testKey).SetVal(`{"exercises": "nope"`)

	cache := New(NewRedisKV(client))
	template := cache.Load(context.Background(), "user-1")

	require.Equal(t, Default(), template)
}

func TestLoadIgnoresEmptyExerciseList(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(testKey).SetVal(`{"exercises":[]}`)

	cache := New(NewRedisKV(client))
	template := cache.Load(context.Background(), "user-1")

	require.Equal(t, Default(), template)
}

func TestSaveWritesSubmittedShape(t *testing.T) {
	client, mock := redismock.NewClientMock()
	template := Template{
		PerceivedEffort: "8",
		Exercises: []StoredExercise{
			{Name: "Squat", Sets: []StoredSet{{WeightKg: "102.5", Reps: "5"}}},
		},
	}
	mock.ExpectSet(testKey, `{"perceivedEffort":"8","exercises":[{"name":"Squat","sets":[{"weightKg":"102.5","reps":"5"}]}]}`, 0).SetVal("OK")

	cache := New(NewRedisKV(client))
	require.NoError(t, cache.Save(context.Background(), "user-1", template))
	require.NoError(t, mock.ExpectationsWereMet())
}
