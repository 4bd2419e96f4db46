package repositories

import (
	"context"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	taskEntity    = "Task"
	subtaskEntity = "Subtask"
)

type TaskRepo struct {
	collection *mongo.Collection
	cb         *gobreaker.CircuitBreaker
}

func NewTaskRepo(db *mongo.Database, cb *gobreaker.CircuitBreaker) *TaskRepo {
	return &TaskRepo{collection: db.Collection(tasksCollection), cb: cb}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func taskQuery(f models.TaskFilter) bson.M {
	query := bson.M{}
	if f.ProjectID != nil {
		query["projeto"] = *f.ProjectID
	}
	if f.ResponsibleID != nil {
		query["responsavel"] = *f.ResponsibleID
	}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.Priority != "" {
		query["prioridade"] = f.Priority
	}
	return query
}

func (r *TaskRepo) Find(ctx context.Context, filter models.TaskFilter, page utils.Pagination) ([]models.Task, int64, error) {
	return findPage[models.Task](ctx, r.cb, r.collection, taskQuery(filter), pageOptions(page, newestFirst))
}

// FindByProject returns the project's tasks newest first; callers apply
// any priority ordering.
func (r *TaskRepo) FindByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	return findAll[models.Task](ctx, r.cb, r.collection, bson.M{"projeto": projectID}, options.Find().SetSort(newestFirst))
}

func (r *TaskRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	return findOne[models.Task](ctx, r.cb, r.collection, bson.M{"_id": id}, taskEntity)
}

func (r *TaskRepo) Insert(ctx context.Context, t *models.Task) error {
	id, err := insertOne(ctx, r.cb, r.collection, t)
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func (r *TaskRepo) Save(ctx context.Context, t *models.Task) error {
	return saveFields(ctx, r.cb, r.collection, t.ID, t, taskEntity, "comentarios")
}

func (r *TaskRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.cb, r.collection, id, taskEntity)
}

func (r *TaskRepo) AppendComment(ctx context.Context, taskID primitive.ObjectID, c models.Comment, at time.Time) error {
	update := bson.M{
		"$push": bson.M{"comentarios": c},
		"$set":  touch(at),
	}
	return r.updateOne(ctx, bson.M{"_id": taskID}, update, taskEntity)
}

func (r *TaskRepo) SetSubtaskDone(ctx context.Context, taskID, subtaskID primitive.ObjectID, done bool, at time.Time) error {
	filter := bson.M{"_id": taskID, "subtarefas._id": subtaskID}
	update := bson.M{"$set": bson.M{
		"subtarefas.$.concluida": done,
		"updatedAt":              at,
	}}
	return r.updateOne(ctx, filter, update, subtaskEntity)
}

func (r *TaskRepo) updateOne(ctx context.Context, filter, update bson.M, entity string) error {
	return run(r.cb, func() error {
		res, err := r.collection.UpdateOne(ctx, filter, update)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return models.NotFound(entity)
		}
		return nil
	})
}
