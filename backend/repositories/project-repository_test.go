package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMockProjectRepo(mt *mtest.T) *ProjectRepo {
	return NewProjectRepo(mt.DB, NewBreaker(BreakerSettings{Name: "test", MaxFailures: 5, Timeout: time.Second}))
}

func updateMatched(n int32) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: n})
}

// countResult answers the aggregate behind CountDocuments.
func countResult(n int32) bson.D {
	if n == 0 {
		return mtest.CreateCursorResponse(0, "TestDB.projects", mtest.FirstBatch)
	}
	return mtest.CreateCursorResponse(0, "TestDB.projects", mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

// sentUpdate returns the first statement of the update command sent.
func sentUpdate(mt *mtest.T) bson.Raw {
	evt := mt.GetStartedEvent()
	require.NotNil(mt, evt)
	require.Equal(mt, "update", evt.CommandName)
	return evt.Command.Lookup("updates").Array().Index(0).Value().Document()
}

func TestProjectRepoAddAssignment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	projectID := primitive.NewObjectID()
	collaboratorID := primitive.NewObjectID()
	assignment := models.Assignment{Colaborador: collaboratorID, Funcao: "Dev", HorasAlocadas: 10, DataEntrada: testNow}

	mt.Run("pushes when no open assignment exists", func(mt *mtest.T) {
		mt.AddMockResponses(updateMatched(1))
		require.NoError(mt, newMockProjectRepo(mt).AddAssignment(ctx, projectID, assignment))

		stmt := sentUpdate(mt)
		assert.Equal(mt, projectID, stmt.Lookup("q", "_id").ObjectID())
		open := stmt.Lookup("q", "colaboradores", "$not", "$elemMatch")
		assert.Equal(mt, collaboratorID, open.Document().Lookup("colaborador").ObjectID())
		assert.Equal(mt, bson.TypeNull, open.Document().Lookup("dataSaida").Type)
		assert.Equal(mt, collaboratorID, stmt.Lookup("u", "$push", "colaboradores", "colaborador").ObjectID())
	})

	mt.Run("existing project means already assigned", func(mt *mtest.T) {
		mt.AddMockResponses(updateMatched(0), countResult(1))
		err := newMockProjectRepo(mt).AddAssignment(ctx, projectID, assignment)
		assert.ErrorIs(mt, err, models.ErrAlreadyAssigned)
	})

	mt.Run("missing project", func(mt *mtest.T) {
		mt.AddMockResponses(updateMatched(0), countResult(0))
		err := newMockProjectRepo(mt).AddAssignment(ctx, projectID, assignment)
		assert.True(mt, models.IsNotFound(err))
	})
}

func TestProjectRepoCloseAssignment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	projectID := primitive.NewObjectID()
	collaboratorID := primitive.NewObjectID()
	at := testNow.Add(time.Hour)

	mt.Run("stamps the open assignment", func(mt *mtest.T) {
		mt.AddMockResponses(updateMatched(1))
		require.NoError(mt, newMockProjectRepo(mt).CloseAssignment(ctx, projectID, collaboratorID, at))

		stmt := sentUpdate(mt)
		assert.Equal(mt, collaboratorID, stmt.Lookup("q", "colaboradores", "$elemMatch", "colaborador").ObjectID())
		assert.Equal(mt, at.UnixMilli(), stmt.Lookup("u", "$set", "colaboradores.$.dataSaida").Time().UnixMilli())
	})

	mt.Run("no open assignment is a no-op", func(mt *mtest.T) {
		mt.AddMockResponses(updateMatched(0), countResult(1))
		assert.NoError(mt, newMockProjectRepo(mt).CloseAssignment(ctx, projectID, collaboratorID, at))
	})

	mt.Run("missing project", func(mt *mtest.T) {
		mt.AddMockResponses(updateMatched(0), countResult(0))
		err := newMockProjectRepo(mt).CloseAssignment(ctx, projectID, collaboratorID, at)
		assert.True(mt, models.IsNotFound(err))
	})
}

func TestProjectRepoSave(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	project := models.NewProject()
	project.ID = primitive.NewObjectID()
	project.Nome = "Portal v2"
	project.Colaboradores = []models.Assignment{{Colaborador: primitive.NewObjectID(), DataEntrada: testNow}}

	mt.Run("sets fields but not the assignment history", func(mt *mtest.T) {
		mt.AddMockResponses(updateMatched(1))
		require.NoError(mt, newMockProjectRepo(mt).Save(ctx, project))

		stmt := sentUpdate(mt)
		assert.Equal(mt, project.ID, stmt.Lookup("q", "_id").ObjectID())
		set := stmt.Lookup("u", "$set").Document()
		assert.Equal(mt, "Portal v2", set.Lookup("nome").StringValue())
		_, err := set.LookupErr("colaboradores")
		assert.Error(mt, err)
		_, err = set.LookupErr("_id")
		assert.Error(mt, err)
	})

	mt.Run("missing project", func(mt *mtest.T) {
		mt.AddMockResponses(updateMatched(0))
		assert.True(mt, models.IsNotFound(newMockProjectRepo(mt).Save(ctx, project)))
	})
}

func TestSetFields(t *testing.T) {
	task := models.NewTask()
	task.ID = primitive.NewObjectID()
	task.Titulo = "Login"
	task.Comentarios = []models.Comment{{Texto: "keep"}}

	update, err := setFields(task, "comentarios")
	require.NoError(t, err)
	set := update["$set"].(bson.M)
	assert.Equal(t, "Login", set["titulo"])
	assert.NotContains(t, set, "comentarios")
	assert.NotContains(t, set, "_id")
	assert.Contains(t, set, "subtarefas")
}
